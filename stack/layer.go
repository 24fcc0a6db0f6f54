package stack

import (
	"github.com/wirestack/wirestack/resources/lambda"
)

// addCommonLayer registers the shared code layer holding the utilities and
// third-party packages every business function imports.
func (s *Stack) addCommonLayer() LayerHandle {
	handle := s.builder.Add("CommonLayer", lambda.LayerVersion{
		LayerName:          s.resourceName("common"),
		Description:        "Shared utilities and dependencies",
		CompatibleRuntimes: []string{functionRuntime},
		Content: lambda.LayerVersion_Content{
			S3Bucket: s.props.ArtifactBucket,
			S3Key:    "layers/common.zip",
		},
	})
	return LayerHandle{handle}
}
