// Where: internal/publish/aws_factory.go
// What: AWS client factory for object storage and the publish ledger.
// Why: Encapsulate SDK configuration for custom S3/DynamoDB-compatible endpoints.
package publish

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/poruru/edge-manifest/internal/envutil"
)

const defaultAWSRegion = "us-east-1"

type ClientFactory interface {
	DynamoDB(ctx context.Context, endpoint string) (DynamoDBAPI, error)
	S3(ctx context.Context, endpoint string) (S3API, error)
}

// AWSClientFactory builds SDK-backed clients. An empty endpoint selects the
// SDK's default resolution. Region overrides EDGEMAN_REGION when set.
type AWSClientFactory struct {
	Region string
}

func (f AWSClientFactory) DynamoDB(ctx context.Context, endpoint string) (DynamoDBAPI, error) {
	cfg, err := loadAWSConfig(ctx, f.Region, envutil.GetHostEnv("LEDGER_ACCESS_KEY"), envutil.GetHostEnv("LEDGER_SECRET_KEY"))
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return awsDynamoClient{client: client}, nil
}

func (f AWSClientFactory) S3(ctx context.Context, endpoint string) (S3API, error) {
	cfg, err := loadAWSConfig(ctx, f.Region, envutil.GetHostEnv("STORAGE_ACCESS_KEY"), envutil.GetHostEnv("STORAGE_SECRET_KEY"))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return awsS3Client{client: client}, nil
}

// loadAWSConfig uses static credentials when both keys are set and falls
// back to the default credential chain otherwise.
func loadAWSConfig(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	if region == "" {
		region = envutil.GetHostEnvOr("REGION", "")
	}
	if region == "" {
		region = defaultRegion()
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	return cfg, nil
}
