// Where: internal/commands/publish.go
// What: Publish command uploading manifest.json to object storage.
// Why: Resolve storage settings from flags, environment and global config.
package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru/edge-manifest/internal/envutil"
	"github.com/poruru/edge-manifest/internal/manifest"
	"github.com/poruru/edge-manifest/internal/ports"
	"github.com/poruru/edge-manifest/internal/publish"
)

type PublishCmd struct {
	Manifest       string `short:"m" help:"Path to manifest.json (default: <output dir>/manifest.json)"`
	Project        string `short:"p" help:"Project name used in the object key"`
	Bucket         string `short:"b" help:"Destination bucket"`
	Prefix         string `help:"Object key prefix"`
	Endpoint       string `help:"Object storage endpoint URL"`
	Region         string `help:"Storage region"`
	LedgerTable    string `name:"ledger-table" help:"DynamoDB table recording each publish"`
	LedgerEndpoint string `name:"ledger-endpoint" help:"DynamoDB endpoint URL"`
}

type publishSettings struct {
	Bucket         string
	Prefix         string
	Endpoint       string
	Region         string
	LedgerTable    string
	LedgerEndpoint string
}

// runPublish executes the 'publish' command.
func runPublish(cli CLI, deps Dependencies, out io.Writer) int {
	flags := cli.Publish
	project, err := resolveProject(cli, deps, flags.Project)
	if err != nil {
		return exitWithError(out, err)
	}

	source := project.manifestPath(flags.Manifest)
	data, err := os.ReadFile(source)
	if err != nil {
		return exitWithError(out, fmt.Errorf("read manifest: %w (run build first)", err))
	}
	m, err := manifest.Decode(data)
	if err != nil {
		return exitWithError(out, fmt.Errorf("parse %s: %w", filepath.Base(source), err))
	}

	settings := resolvePublishSettings(flags, project)
	clients := deps.Publish.Clients
	if clients == nil {
		clients = publish.AWSClientFactory{Region: settings.Region}
	}
	publisher := &publish.Publisher{
		Out:             out,
		Clients:         clients,
		StorageEndpoint: settings.Endpoint,
		LedgerEndpoint:  settings.LedgerEndpoint,
		Now:             deps.now,
		Logger:          deps.Logger,
	}
	result, err := publisher.Publish(deps.runContext(), publish.Request{
		Project:     project.Name,
		Manifest:    m,
		Bucket:      settings.Bucket,
		Prefix:      settings.Prefix,
		LedgerTable: settings.LedgerTable,
	})
	if err != nil {
		return exitWithError(out, err)
	}

	rows := []ports.KeyValue{
		{Key: "Project", Value: project.Name},
		{Key: "Object", Value: fmt.Sprintf("s3://%s/%s", result.Bucket, result.Key)},
		{Key: "SHA-256", Value: result.Digest},
		{Key: "Created buckets", Value: len(result.CreatedBuckets)},
	}
	if settings.LedgerTable != "" {
		rows = append(rows, ports.KeyValue{Key: "Ledger", Value: settings.LedgerTable})
	}
	consoleUI(out).Block("🚀", "Published", rows)
	return 0
}

// resolvePublishSettings applies flag > EDGEMAN_* environment > global config.
func resolvePublishSettings(flags PublishCmd, project projectContext) publishSettings {
	storage := project.Global.Storage
	ledger := project.Global.Ledger
	return publishSettings{
		Bucket:         firstNonEmpty(flags.Bucket, envutil.GetHostEnv("BUCKET"), storage.Bucket),
		Prefix:         firstNonEmpty(flags.Prefix, envutil.GetHostEnv("PREFIX"), storage.Prefix),
		Endpoint:       firstNonEmpty(flags.Endpoint, envutil.GetHostEnv("STORAGE_ENDPOINT"), storage.Endpoint),
		Region:         firstNonEmpty(flags.Region, envutil.GetHostEnv("REGION"), storage.Region),
		LedgerTable:    firstNonEmpty(flags.LedgerTable, envutil.GetHostEnv("LEDGER_TABLE"), ledger.Table),
		LedgerEndpoint: firstNonEmpty(flags.LedgerEndpoint, envutil.GetHostEnv("LEDGER_ENDPOINT"), ledger.Endpoint),
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
