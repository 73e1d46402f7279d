package storage

import (
	"context"
	"fmt"

	"github.com/inboxpilot/mailmetrics/internal/config"
	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// Source fetches raw metric records for a query scope. DynamoStore,
// MemoryStore, TieredSource, and CachedSource all satisfy it, as does the
// warehouse client.
type Source interface {
	FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error)
}

// New builds the record source selected by configuration: "aws" for the
// DynamoDB-backed store, "memory" for the in-process store used in local
// development and tests.
func New(ctx context.Context, cfg config.StorageConfig) (Source, error) {
	switch cfg.Type {
	case "aws":
		if cfg.DynamoDBTable == "" {
			return nil, fmt.Errorf("storage type aws requires dynamodb_table")
		}
		return NewDynamoStore(ctx, cfg.DynamoDBTable, cfg.S3Bucket, cfg.AWSRegion, cfg.GetAWSProfile())
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
