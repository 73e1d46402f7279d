package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a tenant, domain, or mailbox does not exist.
var ErrNotFound = errors.New("not found")

// Tenant is a registered company account.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

// SendingDomain is a domain registered under a tenant.
type SendingDomain struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Domain    string    `json:"domain"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Mailbox is a sending mailbox under a domain.
type Mailbox struct {
	ID        string    `json:"id"`
	DomainID  string    `json:"domain_id"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantRepo reads the tenant registry from PostgreSQL. The registry is the
// relational side of the system: which companies exist and which domains and
// mailboxes they own. Metric records themselves live in DynamoDB.
type TenantRepo struct{ db *sql.DB }

// NewTenantRepo creates a Postgres-backed tenant repository.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{db: db} }

// Open connects to the registry database and verifies the connection.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening registry database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging registry database: %w", err)
	}
	return db, nil
}

func (r *TenantRepo) Get(ctx context.Context, id string) (*Tenant, error) {
	t := &Tenant{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(plan,''), created_at
		FROM tenants
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Plan, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// ListSendingDomains returns the domains registered to a tenant, oldest
// first.
func (r *TenantRepo) ListSendingDomains(ctx context.Context, tenantID string) ([]SendingDomain, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, domain, COALESCE(provider,''), created_at
		FROM sending_domains
		WHERE tenant_id = $1
		ORDER BY created_at ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list sending domains: %w", err)
	}
	defer rows.Close()

	var out []SendingDomain
	for rows.Next() {
		var d SendingDomain
		if err := rows.Scan(&d.ID, &d.TenantID, &d.Domain, &d.Provider, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sending domain: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListMailboxes returns the mailboxes under a domain, oldest first.
func (r *TenantRepo) ListMailboxes(ctx context.Context, domainID string) ([]Mailbox, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, domain_id, email, active, created_at
		FROM mailboxes
		WHERE domain_id = $1
		ORDER BY created_at ASC
	`, domainID)
	if err != nil {
		return nil, fmt.Errorf("list mailboxes: %w", err)
	}
	defer rows.Close()

	var out []Mailbox
	for rows.Next() {
		var m Mailbox
		if err := rows.Scan(&m.ID, &m.DomainID, &m.Email, &m.Active, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mailbox: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CreateSendingDomain registers a domain under a tenant and returns its ID.
func (r *TenantRepo) CreateSendingDomain(ctx context.Context, d *SendingDomain) (string, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sending_domains (id, tenant_id, domain, provider, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, d.ID, d.TenantID, d.Domain, d.Provider)
	if err != nil {
		return "", fmt.Errorf("create sending domain: %w", err)
	}
	return d.ID, nil
}
