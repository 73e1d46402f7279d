package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/inboxpilot/mailmetrics/internal/config"
	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// Client reads archived daily metric records from Snowflake. The warehouse
// holds the full history; DynamoDB only keeps the retention window.
type Client struct {
	cfg config.WarehouseConfig
	db  *sql.DB
}

// ParseConnectionString extracts components from a key=value connection
// string. Format: ACCOUNT=xxx;USER=yyy;PASSWORD=zzz;DB=database.schema;WAREHOUSE=www;
func ParseConnectionString(connStr string) config.WarehouseConfig {
	parts := make(map[string]string)
	for _, segment := range strings.Split(connStr, ";") {
		if idx := strings.Index(segment, "="); idx > 0 {
			parts[strings.ToUpper(segment[:idx])] = segment[idx+1:]
		}
	}

	db := parts["DB"]
	var database, schema string
	if idx := strings.Index(db, "."); idx > 0 {
		database = db[:idx]
		schema = db[idx+1:]
	} else {
		database = db
	}

	return config.WarehouseConfig{
		Account:   parts["ACCOUNT"],
		User:      parts["USER"],
		Password:  parts["PASSWORD"],
		Database:  database,
		Schema:    schema,
		Warehouse: parts["WAREHOUSE"],
	}
}

// NewClient creates a Snowflake client. A connection string takes precedence
// over the individual fields.
func NewClient(cfg config.WarehouseConfig) (*Client, error) {
	if cfg.ConnectionString != "" {
		parsed := ParseConnectionString(cfg.ConnectionString)
		if parsed.Database == "" {
			parsed.Database = cfg.Database
		}
		if parsed.Schema == "" {
			parsed.Schema = cfg.Schema
		}
		cfg = parsed
	}

	// DSN format: user:password@account/database/schema?warehouse=xxx
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		cfg.User,
		cfg.Password,
		cfg.Account,
		cfg.Database,
		cfg.Schema,
	)
	if cfg.Warehouse != "" {
		dsn += "?warehouse=" + cfg.Warehouse
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{cfg: cfg, db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// FetchRecords loads archived daily records for a tenant and date range.
// Domain and mailbox filters apply client side so the query stays a plain
// range scan on the clustering key.
func (c *Client) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	query := `
		SELECT METRIC_DATE, COMPANY_ID, DOMAIN, MAILBOX_ID, EMAIL, PROVIDER,
		       SENT, DELIVERED, OPENED_TRACKED, CLICKED_TRACKED, REPLIED,
		       BOUNCED, UNSUBSCRIBED, SPAM_COMPLAINTS
		FROM DAILY_MAILBOX_METRICS
		WHERE COMPANY_ID = ? AND METRIC_DATE >= ? AND METRIC_DATE <= ?
		ORDER BY METRIC_DATE ASC
	`

	start := q.StartDate
	if start == "" {
		start = "0000-01-01"
	}
	end := q.EndDate
	if end == "" {
		end = "9999-12-31"
	}

	rows, err := c.db.QueryContext(ctx, query, q.CompanyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived metrics: %w", err)
	}
	defer rows.Close()

	var out []metrics.MetricRecord
	for rows.Next() {
		var r metrics.MetricRecord
		if err := rows.Scan(
			&r.Date, &r.CompanyID, &r.Domain, &r.MailboxID, &r.Email, &r.Provider,
			&r.Sent, &r.Delivered, &r.OpenedTracked, &r.ClickedTracked, &r.Replied,
			&r.Bounced, &r.Unsubscribed, &r.SpamComplaints,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}
