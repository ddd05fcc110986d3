// Where: internal/publish/publish.go
// What: Publish a compiled manifest to object storage.
// Why: Ship manifest.json next to the buckets its origins reference.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/meta"
	"github.com/rs/zerolog"
)

const manifestContentType = "application/json"

// Publisher uploads manifests. Zero-value fields fall back to defaults.
type Publisher struct {
	Out             io.Writer
	Clients         ClientFactory
	StorageEndpoint string
	LedgerEndpoint  string
	Now             func() time.Time
	Logger          zerolog.Logger
}

// Request describes one publish.
type Request struct {
	Project     string
	Manifest    manifest.Manifest
	Bucket      string
	Prefix      string
	LedgerTable string
}

// Result summarizes a publish.
type Result struct {
	Bucket         string
	Key            string
	Digest         string
	CreatedBuckets []string
	Recorded       bool
}

func New() *Publisher {
	return &Publisher{
		Out:     os.Stdout,
		Clients: AWSClientFactory{},
		Now:     time.Now,
		Logger:  zerolog.Nop(),
	}
}

// Publish ensures origin buckets exist, uploads manifest.json and, when a
// ledger table is set, records the upload.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("publisher is nil")
	}
	if p.Clients == nil {
		return Result{}, fmt.Errorf("client factory not configured")
	}
	project := strings.TrimSpace(req.Project)
	if project == "" {
		return Result{}, fmt.Errorf("project is required")
	}
	bucket := strings.TrimSpace(req.Bucket)
	if bucket == "" {
		return Result{}, fmt.Errorf("bucket is required")
	}
	out := p.Out
	if out == nil {
		out = io.Discard
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}

	body, err := manifest.Encode(req.Manifest)
	if err != nil {
		return Result{}, fmt.Errorf("encode manifest: %w", err)
	}
	sum := sha256.Sum256(body)
	result := Result{
		Bucket: bucket,
		Key:    objectKey(req.Prefix, project, meta.ManifestFile),
		Digest: hex.EncodeToString(sum[:]),
	}

	storage, err := p.Clients.S3(ctx, p.StorageEndpoint)
	if err != nil {
		return Result{}, fmt.Errorf("object storage client: %w", err)
	}
	buckets := append([]string{bucket}, originBuckets(req.Manifest.Origin)...)
	result.CreatedBuckets, err = ensureBuckets(ctx, storage, dedupe(buckets), out)
	if err != nil {
		return result, err
	}
	p.Logger.Debug().Strs("created", result.CreatedBuckets).Msg("buckets ensured")

	if err := storage.PutObject(ctx, bucket, result.Key, body, manifestContentType); err != nil {
		return result, fmt.Errorf("upload %s/%s: %w", bucket, result.Key, err)
	}
	fmt.Fprintf(out, "✅ Uploaded s3://%s/%s\n", bucket, result.Key)
	p.Logger.Debug().Str("key", result.Key).Str("digest", result.Digest).Msg("manifest uploaded")

	table := strings.TrimSpace(req.LedgerTable)
	if table == "" {
		return result, nil
	}
	ledger, err := p.Clients.DynamoDB(ctx, p.LedgerEndpoint)
	if err != nil {
		return result, fmt.Errorf("ledger client: %w", err)
	}
	if err := ensureLedgerTable(ctx, ledger, table, out); err != nil {
		return result, err
	}
	record := LedgerRecord{
		Project:       project,
		PublishedAt:   now().UTC().Format(time.RFC3339Nano),
		Digest:        result.Digest,
		Bucket:        bucket,
		Key:           result.Key,
		Rules:         len(req.Manifest.Rules),
		Origins:       len(req.Manifest.Origin),
		CacheSettings: len(req.Manifest.CacheSettings),
	}
	if err := ledger.PutRecord(ctx, table, record); err != nil {
		return result, fmt.Errorf("record publish: %w", err)
	}
	result.Recorded = true
	return result, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
