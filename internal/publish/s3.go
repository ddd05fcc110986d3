// Where: internal/publish/s3.go
// What: Object storage helpers for publishing.
// Why: Make sure object_storage origins have a bucket and upload the manifest.
package publish

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/poruru/edge-manifest/internal/manifest"
)

type S3API interface {
	ListBuckets(ctx context.Context) ([]string, error)
	CreateBucket(ctx context.Context, name string) error
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// originBuckets returns the distinct non-empty buckets named by
// object_storage origins, in declaration order.
func originBuckets(origins []manifest.OriginSetting) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, origin := range origins {
		if origin.OriginType != manifest.OriginObjectStorage || origin.Bucket == nil {
			continue
		}
		name := strings.TrimSpace(*origin.Bucket)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ensureBuckets creates missing buckets and returns the names it created.
func ensureBuckets(ctx context.Context, client S3API, buckets []string, out io.Writer) ([]string, error) {
	if client == nil || len(buckets) == 0 {
		return nil, nil
	}
	if out == nil {
		out = io.Discard
	}

	existingBuckets := map[string]struct{}{}
	names, err := client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	for _, name := range names {
		existingBuckets[name] = struct{}{}
	}

	var created []string
	for _, name := range buckets {
		if _, ok := existingBuckets[name]; ok {
			fmt.Fprintf(out, "Bucket '%s' already exists. Skipping.\n", name)
			continue
		}
		if err := client.CreateBucket(ctx, name); err != nil {
			return created, fmt.Errorf("create bucket %s: %w", name, err)
		}
		existingBuckets[name] = struct{}{}
		created = append(created, name)
		fmt.Fprintf(out, "✅ Created bucket: %s\n", name)
	}
	return created, nil
}

// objectKey joins prefix, project and the manifest file name.
func objectKey(prefix, project, file string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{prefix, project} {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	parts = append(parts, file)
	return path.Join(parts...)
}
