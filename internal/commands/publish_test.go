// Where: internal/commands/publish_test.go
// What: Tests for the publish command.
// Why: Ensure settings precedence and upload wiring with fake clients.
package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poruru/edge-manifest/internal/config"
	"github.com/poruru/edge-manifest/internal/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	buckets []string
	objects map[string][]byte
}

func (f *fakeStorage) ListBuckets(context.Context) ([]string, error) {
	return f.buckets, nil
}

func (f *fakeStorage) CreateBucket(_ context.Context, name string) error {
	f.buckets = append(f.buckets, name)
	return nil
}

func (f *fakeStorage) PutObject(_ context.Context, bucket, key string, body []byte, _ string) error {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[bucket+"/"+key] = body
	return nil
}

type fakeLedger struct {
	tables  []string
	records []publish.LedgerRecord
}

func (f *fakeLedger) ListTables(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeLedger) CreateTable(_ context.Context, input publish.DynamoCreateInput) error {
	f.tables = append(f.tables, input.TableName)
	return nil
}

func (f *fakeLedger) PutRecord(_ context.Context, _ string, record publish.LedgerRecord) error {
	f.records = append(f.records, record)
	return nil
}

type fakeClients struct {
	storage   *fakeStorage
	ledger    *fakeLedger
	endpoints map[string]string
}

func newFakeClients() *fakeClients {
	return &fakeClients{storage: &fakeStorage{}, ledger: &fakeLedger{}, endpoints: map[string]string{}}
}

func (f *fakeClients) S3(_ context.Context, endpoint string) (publish.S3API, error) {
	f.endpoints["s3"] = endpoint
	return f.storage, nil
}

func (f *fakeClients) DynamoDB(_ context.Context, endpoint string) (publish.DynamoDBAPI, error) {
	f.endpoints["dynamodb"] = endpoint
	return f.ledger, nil
}

func TestRunPublishUsesFlags(t *testing.T) {
	p := buildProject(t)
	clients := newFakeClients()
	p.deps.Publish.Clients = clients

	code := p.run("publish", "--project", "demo", "--bucket", "manifests", "--prefix", "edge",
		"--endpoint", "http://localhost:9000", "--ledger-table", "publishes")
	require.Equal(t, 0, code, p.out.String())

	assert.Contains(t, clients.storage.objects, "manifests/edge/demo/manifest.json")
	assert.ElementsMatch(t, []string{"manifests", "site-assets"}, clients.storage.buckets)
	assert.Equal(t, "http://localhost:9000", clients.endpoints["s3"])
	require.Len(t, clients.ledger.records, 1)
	assert.Equal(t, "demo", clients.ledger.records[0].Project)
	assert.Equal(t, 2, clients.ledger.records[0].Rules)
	assert.Contains(t, p.out.String(), "s3://manifests/edge/demo/manifest.json")
}

func TestRunPublishFallsBackToGlobalConfig(t *testing.T) {
	p := buildProject(t)
	global := config.DefaultGlobalConfig()
	global.Storage = config.StorageConfig{Endpoint: "http://storage:9000", Bucket: "global-bucket"}
	require.NoError(t, config.SaveGlobalConfig(filepath.Join(p.configHome, "config.yaml"), global))

	clients := newFakeClients()
	p.deps.Publish.Clients = clients
	require.Equal(t, 0, p.run("publish", "-p", "demo"), p.out.String())

	assert.Contains(t, clients.storage.objects, "global-bucket/demo/manifest.json")
	assert.Equal(t, "http://storage:9000", clients.endpoints["s3"])
	assert.Empty(t, clients.ledger.records)
	_, usedLedger := clients.endpoints["dynamodb"]
	assert.False(t, usedLedger)
}

func TestRunPublishEnvironmentBeatsGlobalConfig(t *testing.T) {
	p := buildProject(t)
	global := config.DefaultGlobalConfig()
	global.Storage.Bucket = "global-bucket"
	require.NoError(t, config.SaveGlobalConfig(filepath.Join(p.configHome, "config.yaml"), global))
	t.Setenv("EDGEMAN_BUCKET", "env-bucket")

	clients := newFakeClients()
	p.deps.Publish.Clients = clients
	require.Equal(t, 0, p.run("publish", "-p", "demo"), p.out.String())
	assert.Contains(t, clients.storage.objects, "env-bucket/demo/manifest.json")
}

func TestRunPublishRequiresBucket(t *testing.T) {
	p := buildProject(t)
	t.Setenv("EDGEMAN_BUCKET", "")
	p.deps.Publish.Clients = newFakeClients()

	assert.Equal(t, 1, p.run("publish"))
	assert.Contains(t, p.out.String(), "bucket is required")
}

func TestRunPublishRequiresManifest(t *testing.T) {
	p := newTestProject(t, projectConfig)
	p.deps.Publish.Clients = newFakeClients()

	assert.Equal(t, 1, p.run("publish", "--bucket", "b"))
	assert.Contains(t, p.out.String(), "run build first")
}
