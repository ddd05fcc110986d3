// Where: internal/publish/aws_clients.go
// What: AWS SDK adapters for DynamoDB and S3.
// Why: Map publish types to SDK types.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func defaultRegion() string {
	if region := strings.TrimSpace(os.Getenv("AWS_REGION")); region != "" {
		return region
	}
	return defaultAWSRegion
}

type awsDynamoClient struct {
	client *dynamodb.Client
}

func (c awsDynamoClient) ListTables(ctx context.Context) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("dynamodb client is nil")
	}
	var names []string
	paginator := dynamodb.NewListTablesPaginator(c.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

func (c awsDynamoClient) CreateTable(ctx context.Context, input DynamoCreateInput) error {
	if c.client == nil {
		return fmt.Errorf("dynamodb client is nil")
	}
	awsInput, err := buildAWSCreateTableInput(input)
	if err != nil {
		return err
	}
	if _, err := c.client.CreateTable(ctx, awsInput); err != nil {
		return err
	}
	waiter := dynamodb.NewTableExistsWaiter(c.client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(input.TableName)}, tableWaitTimeout)
}

func (c awsDynamoClient) PutRecord(ctx context.Context, table string, record LedgerRecord) error {
	if c.client == nil {
		return fmt.Errorf("dynamodb client is nil")
	}
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      recordItem(record),
	})
	return err
}

func recordItem(record LedgerRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		ledgerPartitionKey: &types.AttributeValueMemberS{Value: record.Project},
		ledgerSortKey:      &types.AttributeValueMemberS{Value: record.PublishedAt},
		"digest":           &types.AttributeValueMemberS{Value: record.Digest},
		"bucket":           &types.AttributeValueMemberS{Value: record.Bucket},
		"key":              &types.AttributeValueMemberS{Value: record.Key},
		"rules":            &types.AttributeValueMemberN{Value: strconv.Itoa(record.Rules)},
		"origins":          &types.AttributeValueMemberN{Value: strconv.Itoa(record.Origins)},
		"cache_settings":   &types.AttributeValueMemberN{Value: strconv.Itoa(record.CacheSettings)},
	}
}

func buildAWSCreateTableInput(input DynamoCreateInput) (*dynamodb.CreateTableInput, error) {
	billingMode, err := mapBillingMode(input.BillingMode)
	if err != nil {
		return nil, err
	}
	keySchema, err := mapKeySchema(input.KeySchema)
	if err != nil {
		return nil, err
	}
	attrDefs, err := mapAttributeDefinitions(input.AttributeDefinitions)
	if err != nil {
		return nil, err
	}

	out := &dynamodb.CreateTableInput{
		TableName:            aws.String(input.TableName),
		KeySchema:            keySchema,
		AttributeDefinitions: attrDefs,
		BillingMode:          billingMode,
	}
	if billingMode == types.BillingModeProvisioned {
		out.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(1),
			WriteCapacityUnits: aws.Int64(1),
		}
	}
	return out, nil
}

func mapBillingMode(value string) (types.BillingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PAY_PER_REQUEST", "":
		return types.BillingModePayPerRequest, nil
	case "PROVISIONED":
		return types.BillingModeProvisioned, nil
	default:
		return "", fmt.Errorf("unsupported billing mode: %s", value)
	}
}

func mapKeySchema(values []KeySchemaElement) ([]types.KeySchemaElement, error) {
	out := make([]types.KeySchemaElement, 0, len(values))
	for _, item := range values {
		var keyType types.KeyType
		switch strings.ToUpper(strings.TrimSpace(item.KeyType)) {
		case "HASH":
			keyType = types.KeyTypeHash
		case "RANGE":
			keyType = types.KeyTypeRange
		default:
			return nil, fmt.Errorf("unsupported key type: %s", item.KeyType)
		}
		out = append(out, types.KeySchemaElement{
			AttributeName: aws.String(item.AttributeName),
			KeyType:       keyType,
		})
	}
	return out, nil
}

func mapAttributeDefinitions(values []AttributeDefinition) ([]types.AttributeDefinition, error) {
	out := make([]types.AttributeDefinition, 0, len(values))
	for _, item := range values {
		var attrType types.ScalarAttributeType
		switch strings.ToUpper(strings.TrimSpace(item.AttributeType)) {
		case "S":
			attrType = types.ScalarAttributeTypeS
		case "N":
			attrType = types.ScalarAttributeTypeN
		case "B":
			attrType = types.ScalarAttributeTypeB
		default:
			return nil, fmt.Errorf("unsupported attribute type: %s", item.AttributeType)
		}
		out = append(out, types.AttributeDefinition{
			AttributeName: aws.String(item.AttributeName),
			AttributeType: attrType,
		})
	}
	return out, nil
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) ListBuckets(ctx context.Context) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	resp, err := c.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Buckets))
	for _, bucket := range resp.Buckets {
		if bucket.Name == nil {
			continue
		}
		names = append(names, *bucket.Name)
	}
	return names, nil
}

func (c awsS3Client) CreateBucket(ctx context.Context, name string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if region := c.client.Options().Region; region != "" && region != defaultAWSRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	_, err := c.client.CreateBucket(ctx, input)
	return err
}

func (c awsS3Client) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	return err
}
