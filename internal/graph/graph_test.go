package graph

import (
	"strings"
	"testing"

	wirestack "github.com/wirestack/wirestack"
)

func testTemplate() *wirestack.Template {
	return &wirestack.Template{
		Resources: map[string]wirestack.ResourceDef{
			"UsersTable": {
				Type:       "AWS::DynamoDB::Table",
				Properties: map[string]any{"TableName": "test-users"},
			},
			"UserManagementFunction": {
				Type: "AWS::Lambda::Function",
				Properties: map[string]any{
					"Environment": map[string]any{
						"Variables": map[string]any{
							"USER_TABLE_NAME": map[string]any{"Ref": "UsersTable"},
						},
					},
				},
			},
			"DataBucket": {
				Type:       "AWS::S3::Bucket",
				Properties: map[string]any{"BucketName": "test-data"},
				DependsOn:  []string{"UserManagementFunction"},
			},
		},
	}
}

func TestGenerateDOT(t *testing.T) {
	g := &Generator{}

	output, err := g.GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("GenerateString() error = %v", err)
	}

	for _, want := range []string{"UsersTable", "UserManagementFunction", "DataBucket", "->"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestGenerateMermaid(t *testing.T) {
	g := &Generator{Format: FormatMermaid}

	output, err := g.GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("GenerateString() error = %v", err)
	}

	if !strings.Contains(output, "graph TB") {
		t.Errorf("expected Mermaid header, got:\n%s", output)
	}
}

func TestDependencies(t *testing.T) {
	tmpl := testTemplate()

	deps := dependencies(tmpl, "UserManagementFunction", tmpl.Resources["UserManagementFunction"])
	if len(deps) != 1 || deps[0] != "UsersTable" {
		t.Errorf("dependencies = %v, want [UsersTable]", deps)
	}

	deps = dependencies(tmpl, "DataBucket", tmpl.Resources["DataBucket"])
	if len(deps) != 1 || deps[0] != "UserManagementFunction" {
		t.Errorf("dependencies = %v, want [UserManagementFunction]", deps)
	}
}

func TestClusterByService(t *testing.T) {
	g := &Generator{ClusterByService: true}

	tmpl := testTemplate()
	tmpl.Resources["ProcessedDataTable"] = wirestack.ResourceDef{
		Type:       "AWS::DynamoDB::Table",
		Properties: map[string]any{"TableName": "test-processed-data"},
	}

	output, err := g.GenerateString(tmpl)
	if err != nil {
		t.Fatalf("GenerateString() error = %v", err)
	}

	if !strings.Contains(output, "cluster_DynamoDB") {
		t.Errorf("expected DynamoDB cluster, got:\n%s", output)
	}
}
