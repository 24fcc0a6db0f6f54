package stack

import (
	"github.com/wirestack/wirestack/intrinsics"
	"github.com/wirestack/wirestack/resources/lambda"
	"github.com/wirestack/wirestack/resources/s3"
)

// uploadPrefix is the key prefix whose object-created events trigger
// processing.
const uploadPrefix = "uploads/"

// DataProcessorAPI is the upload processing component: a versioned,
// encrypted, private bucket whose uploads/ events invoke the processor
// function, plus a /process endpoint for on-demand runs. Results land in
// the processed-data table.
type DataProcessorAPI struct {
	Function  *Function
	Bucket    BucketHandle
	Endpoints *EndpointGroup
}

func (s *Stack) addDataProcessor() *DataProcessorAPI {
	fn := s.addFunction(FunctionSpec{
		Name:        "DataProcessor",
		Description: "Processes uploaded objects and on-demand requests",
		Handler:     "data_processor.handler",
		Layer:       s.Layer,
		Bindings: []Binding{
			BindTable("PROCESSED_DATA_TABLE_NAME", s.Tables.ProcessedData, CapabilityRead, CapabilityWrite),
		},
	})

	// The S3 invoke permission uses SourceAccount rather than the bucket
	// ARN: the bucket's notification configuration references the function,
	// so a SourceArn back to the bucket would close a dependency cycle.
	permission := s.builder.Add("DataBucketPermission", lambda.Permission{
		FunctionName:  fn.Handle,
		Action:        "lambda:InvokeFunction",
		Principal:     "s3.amazonaws.com",
		SourceAccount: intrinsics.AWS_ACCOUNT_ID,
	})

	bucketName := s.resourceName("data")
	bucket := BucketHandle{Name: bucketName, Handle: s.builder.Add("DataBucket", s3.Bucket{
		BucketName: bucketName,
		VersioningConfiguration: &s3.VersioningConfiguration{
			Status: "Enabled",
		},
		BucketEncryption: &s3.BucketEncryption{
			ServerSideEncryptionConfiguration: []s3.ServerSideEncryptionRule{{
				ServerSideEncryptionByDefault: &s3.ServerSideEncryptionByDefault{
					SSEAlgorithm: "AES256",
				},
			}},
		},
		PublicAccessBlockConfiguration: &s3.PublicAccessBlockConfiguration{
			BlockPublicAcls:       true,
			BlockPublicPolicy:     true,
			IgnorePublicAcls:      true,
			RestrictPublicBuckets: true,
		},
		// Teardown of a versioned bucket still requires emptying it; the
		// lifecycle rules keep old versions and stalled uploads from piling
		// up in the meantime.
		LifecycleConfiguration: &s3.LifecycleConfiguration{
			Rules: []s3.LifecycleRule{{
				Id:                                "housekeeping",
				Status:                            "Enabled",
				NoncurrentVersionExpirationInDays: 30,
				AbortIncompleteMultipartUpload:    &s3.AbortIncompleteMultipartUpload{DaysAfterInitiation: 7},
			}},
		},
		NotificationConfiguration: &s3.NotificationConfiguration{
			LambdaConfigurations: []s3.LambdaConfiguration{{
				Event: "s3:ObjectCreated:*",
				Filter: &s3.NotificationFilter{
					S3Key: s3.S3KeyFilter{
						Rules: []s3.FilterRule{{Name: "prefix", Value: uploadPrefix}},
					},
				},
				Function: fn.Handle.Attr("Arn"),
			}},
		},
	})}
	// The permission must exist before the notification configuration is
	// applied, or bucket creation fails validation.
	s.builder.AddDependency(bucket.LogicalID, permission.LogicalID)
	s.builder.SetDeletionPolicy(bucket.LogicalID, "Delete")

	s.builder.Add("DataBucketPolicy", s3.BucketPolicy{
		Bucket: bucket.Handle,
		PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Sid:       "DenyInsecureTransport",
			Effect:    "Deny",
			Principal: intrinsics.AllPrincipal,
			Action:    "s3:*",
			Resource:  intrinsics.Any(bucket.Arn(), bucket.ObjectsArn()),
			Condition: intrinsics.Json{
				intrinsics.Bool: intrinsics.Json{"aws:SecureTransport": "false"},
			},
		}),
	})

	// The bucket handle exists only now, so its binding is attached to the
	// already-registered function instead of being declared up front.
	s.bindLate(fn, BindBucket("DATA_BUCKET_NAME", bucket, CapabilityRead, CapabilityWrite))

	s.subscriptions = append(s.subscriptions, Subscription{
		Source: bucket.LogicalID,
		Target: fn,
		Event:  "s3:ObjectCreated:*",
		Prefix: uploadPrefix,
	})

	endpoints := s.addEndpointGroup(EndpointGroupSpec{
		Name:        "ProcessorApi",
		Description: "Data processing API",
		Routes: []Route{
			{Method: "POST", Path: "/process", Fn: fn},
		},
	})

	return &DataProcessorAPI{Function: fn, Bucket: bucket, Endpoints: endpoints}
}
