// Where: internal/publish/dynamodb.go
// What: Publish ledger table helpers.
// Why: Record every published manifest digest per project.
package publish

import (
	"context"
	"fmt"
	"io"
	"time"
)

const (
	ledgerPartitionKey = "project"
	ledgerSortKey      = "published_at"
	tableWaitTimeout   = 2 * time.Minute
)

type DynamoDBAPI interface {
	ListTables(ctx context.Context) ([]string, error)
	CreateTable(ctx context.Context, input DynamoCreateInput) error
	PutRecord(ctx context.Context, table string, record LedgerRecord) error
}

type DynamoCreateInput struct {
	TableName            string
	KeySchema            []KeySchemaElement
	AttributeDefinitions []AttributeDefinition
	BillingMode          string
}

type KeySchemaElement struct {
	AttributeName string
	KeyType       string
}

type AttributeDefinition struct {
	AttributeName string
	AttributeType string
}

// LedgerRecord is one published manifest.
type LedgerRecord struct {
	Project       string
	PublishedAt   string
	Digest        string
	Bucket        string
	Key           string
	Rules         int
	Origins       int
	CacheSettings int
}

func ledgerTableInput(table string) DynamoCreateInput {
	return DynamoCreateInput{
		TableName: table,
		KeySchema: []KeySchemaElement{
			{AttributeName: ledgerPartitionKey, KeyType: "HASH"},
			{AttributeName: ledgerSortKey, KeyType: "RANGE"},
		},
		AttributeDefinitions: []AttributeDefinition{
			{AttributeName: ledgerPartitionKey, AttributeType: "S"},
			{AttributeName: ledgerSortKey, AttributeType: "S"},
		},
		BillingMode: "PAY_PER_REQUEST",
	}
}

func ensureLedgerTable(ctx context.Context, client DynamoDBAPI, table string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	names, err := client.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, name := range names {
		if name == table {
			return nil
		}
	}
	fmt.Fprintf(out, "Creating ledger table: %s\n", table)
	if err := client.CreateTable(ctx, ledgerTableInput(table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	fmt.Fprintf(out, "✅ Created ledger table: %s\n", table)
	return nil
}
