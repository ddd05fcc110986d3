// Where: internal/publish/publish_test.go
// What: Tests for manifest publishing.
// Why: Ensure bucket provisioning, upload keys and ledger records with fake clients.
package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	existing  []string
	created   []string
	createErr error
	puts      []fakeObject
}

type fakeObject struct {
	bucket      string
	key         string
	body        []byte
	contentType string
}

func (f *fakeS3) ListBuckets(_ context.Context) ([]string, error) {
	return append(append([]string{}, f.existing...), f.created...), nil
}

func (f *fakeS3) CreateBucket(_ context.Context, name string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, name)
	return nil
}

func (f *fakeS3) PutObject(_ context.Context, bucket, key string, body []byte, contentType string) error {
	f.puts = append(f.puts, fakeObject{bucket: bucket, key: key, body: body, contentType: contentType})
	return nil
}

type fakeDynamo struct {
	existing []string
	created  []DynamoCreateInput
	records  []LedgerRecord
	tables   []string
}

func (f *fakeDynamo) ListTables(_ context.Context) ([]string, error) {
	return f.existing, nil
}

func (f *fakeDynamo) CreateTable(_ context.Context, input DynamoCreateInput) error {
	f.created = append(f.created, input)
	return nil
}

func (f *fakeDynamo) PutRecord(_ context.Context, table string, record LedgerRecord) error {
	f.tables = append(f.tables, table)
	f.records = append(f.records, record)
	return nil
}

type fakeFactory struct {
	s3        *fakeS3
	dynamo    *fakeDynamo
	endpoints []string
}

func (f *fakeFactory) DynamoDB(_ context.Context, endpoint string) (DynamoDBAPI, error) {
	f.endpoints = append(f.endpoints, "dynamodb="+endpoint)
	return f.dynamo, nil
}

func (f *fakeFactory) S3(_ context.Context, endpoint string) (S3API, error) {
	f.endpoints = append(f.endpoints, "s3="+endpoint)
	return f.s3, nil
}

func sampleManifest(t *testing.T) manifest.Manifest {
	t.Helper()
	site := "site-assets"
	empty := ""
	return manifest.Manifest{
		Origin: []manifest.OriginSetting{
			{Name: "assets", OriginType: manifest.OriginObjectStorage, Bucket: &site},
			{Name: "again", OriginType: manifest.OriginObjectStorage, Bucket: &site},
			{Name: "blank", OriginType: manifest.OriginObjectStorage, Bucket: &empty},
			{Name: "api", OriginType: manifest.OriginSingle},
		},
		Rules: []manifest.Rule{{Name: "r", Phase: manifest.PhaseRequest, Order: 2}},
	}
}

func TestPublishUploadsAndRecords(t *testing.T) {
	storage := &fakeS3{existing: []string{"manifests"}}
	ledger := &fakeDynamo{}
	factory := &fakeFactory{s3: storage, dynamo: ledger}
	var out bytes.Buffer
	publisher := &Publisher{
		Out:             &out,
		Clients:         factory,
		StorageEndpoint: "http://localhost:9000",
		Now:             func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}

	m := sampleManifest(t)
	result, err := publisher.Publish(context.Background(), Request{
		Project:     "shop",
		Manifest:    m,
		Bucket:      "manifests",
		Prefix:      "/edge/",
		LedgerTable: "edge-publishes",
	})
	require.NoError(t, err)

	body, err := manifest.Encode(m)
	require.NoError(t, err)
	sum := sha256.Sum256(body)

	assert.Equal(t, "edge/shop/manifest.json", result.Key)
	assert.Equal(t, hex.EncodeToString(sum[:]), result.Digest)
	assert.Equal(t, []string{"site-assets"}, result.CreatedBuckets)
	assert.True(t, result.Recorded)

	require.Len(t, storage.puts, 1)
	assert.Equal(t, "manifests", storage.puts[0].bucket)
	assert.Equal(t, body, storage.puts[0].body)
	assert.Equal(t, "application/json", storage.puts[0].contentType)

	require.Len(t, ledger.created, 1)
	assert.Equal(t, "edge-publishes", ledger.created[0].TableName)
	require.Len(t, ledger.records, 1)
	assert.Equal(t, LedgerRecord{
		Project:     "shop",
		PublishedAt: "2026-01-02T03:04:05Z",
		Digest:      result.Digest,
		Bucket:      "manifests",
		Key:         "edge/shop/manifest.json",
		Rules:       1,
		Origins:     4,
	}, ledger.records[0])

	assert.Equal(t, []string{"s3=http://localhost:9000", "dynamodb="}, factory.endpoints)
	assert.Contains(t, out.String(), "Bucket 'manifests' already exists. Skipping.")
	assert.Contains(t, out.String(), "Uploaded s3://manifests/edge/shop/manifest.json")
}

func TestPublishSkipsLedgerWithoutTable(t *testing.T) {
	factory := &fakeFactory{s3: &fakeS3{}, dynamo: &fakeDynamo{}}
	publisher := &Publisher{Clients: factory}

	result, err := publisher.Publish(context.Background(), Request{Project: "p", Bucket: "b"})
	require.NoError(t, err)
	assert.False(t, result.Recorded)
	assert.Equal(t, "p/manifest.json", result.Key)
	assert.Equal(t, []string{"s3="}, factory.endpoints)
}

func TestPublishExistingLedgerTableIsReused(t *testing.T) {
	ledger := &fakeDynamo{existing: []string{"ledger"}}
	publisher := &Publisher{Clients: &fakeFactory{s3: &fakeS3{}, dynamo: ledger}}

	_, err := publisher.Publish(context.Background(), Request{Project: "p", Bucket: "b", LedgerTable: "ledger"})
	require.NoError(t, err)
	assert.Empty(t, ledger.created)
	assert.Equal(t, []string{"ledger"}, ledger.tables)
}

func TestPublishValidatesRequest(t *testing.T) {
	publisher := &Publisher{Clients: &fakeFactory{s3: &fakeS3{}, dynamo: &fakeDynamo{}}}
	_, err := publisher.Publish(context.Background(), Request{Bucket: "b"})
	require.ErrorContains(t, err, "project is required")
	_, err = publisher.Publish(context.Background(), Request{Project: "p"})
	require.ErrorContains(t, err, "bucket is required")
	_, err = (&Publisher{}).Publish(context.Background(), Request{Project: "p", Bucket: "b"})
	require.ErrorContains(t, err, "client factory not configured")
}

func TestPublishStopsWhenBucketCreationFails(t *testing.T) {
	storage := &fakeS3{createErr: errors.New("denied")}
	publisher := &Publisher{Clients: &fakeFactory{s3: storage, dynamo: &fakeDynamo{}}}

	_, err := publisher.Publish(context.Background(), Request{Project: "p", Bucket: "b"})
	require.ErrorContains(t, err, "create bucket b: denied")
	assert.Empty(t, storage.puts)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "manifest.json", objectKey("", "", "manifest.json"))
	assert.Equal(t, "a/b/p/manifest.json", objectKey("/a/b/", "p", "manifest.json"))
}

func TestBuildAWSCreateTableInput(t *testing.T) {
	input, err := buildAWSCreateTableInput(ledgerTableInput("ledger"))
	require.NoError(t, err)
	assert.Equal(t, "ledger", *input.TableName)
	assert.Len(t, input.KeySchema, 2)
	assert.Nil(t, input.ProvisionedThroughput)

	_, err = buildAWSCreateTableInput(DynamoCreateInput{BillingMode: "SOMETIMES"})
	require.ErrorContains(t, err, "unsupported billing mode")
	_, err = mapKeySchema([]KeySchemaElement{{AttributeName: "x", KeyType: "SIDEWAYS"}})
	require.ErrorContains(t, err, "unsupported key type")
}

func TestRecordItemCarriesCounts(t *testing.T) {
	item := recordItem(LedgerRecord{Project: "p", PublishedAt: "t", Rules: 3})
	require.Contains(t, item, "project")
	require.Contains(t, item, "published_at")
	require.Contains(t, item, "rules")
}

func TestDefaultRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	assert.Equal(t, "us-east-1", defaultRegion())
	t.Setenv("AWS_REGION", "eu-west-1")
	assert.Equal(t, "eu-west-1", defaultRegion())
}
