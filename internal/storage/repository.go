// Package storage is the relational ledger store. The same queries run on
// SQLite for local use and on PostgreSQL for the shared deployment.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// Dialect selects the SQL driver and its migration set.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect accepts "sqlite" and "postgres" (or "postgresql", "pgx").
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", s)
	}
}

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// Repository implements ledger.Store over database/sql.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ ledger.Store = (*Repository)(nil)

// Open connects, waits for the database to answer and applies migrations.
// For SQLite the dsn is a file path.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Repository, error) {
	if dialect == DialectSQLite {
		path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	}

	db, err := openDB(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, dialect: dialect, now: time.Now}, nil
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func openDB(dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return db, nil
	case DialectPostgres:
		config, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}
		return stdlib.OpenDB(*config), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// ping retries while a remote database is still starting up.
func ping(ctx context.Context, db *sql.DB, dialect Dialect) error {
	attempts := 1
	if dialect == DialectPostgres {
		attempts = connectAttempts
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i < attempts-1 {
			slog.WarnContext(ctx, "Database not ready, retrying",
				"attempt", i+1, "max_attempts", attempts, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(connectDelay):
			}
		}
	}
	return fmt.Errorf("ping database: %w", err)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// DB exposes the pool for connection statistics.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *Repository) stamp() int64 {
	return r.now().UnixNano()
}

const transactionColumns = `
	SELECT t.id, t.owner_id, t.kind, t.amount, t.date, t.description,
	       c.id, c.name, c.color
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id AND c.owner_id = t.owner_id`

// ListTransactions implements ledger.TransactionReader.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string, f ledger.Filter) ([]core.Transaction, error) {
	query := transactionColumns + ` WHERE t.owner_id = ?`
	args := []any{ownerID}
	if !f.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += ` AND t.date <= ?`
		args = append(args, f.To)
	}
	if f.Kind != "" {
		query += ` AND t.kind = ?`
		args = append(args, string(f.Kind))
	}
	query += ` ORDER BY t.date, t.created_at_ns, t.id`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                      core.Transaction
		kind                   string
		catID, catName, catHex sql.NullString
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &kind, &t.Amount, &t.Date, &t.Description, &catID, &catName, &catHex); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	if catID.Valid {
		t.Category = &core.CategoryRef{ID: catID.String, Name: catName.String, Color: catHex.String}
	}
	return t, nil
}

// ListCategories implements ledger.CategoryReader.
func (r *Repository) ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	query := `SELECT id, owner_id, kind, name, color, icon FROM categories WHERE owner_id = ?`
	args := []any{ownerID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, name`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// GetCategory implements ledger.CategoryReader.
func (r *Repository) GetCategory(ctx context.Context, ownerID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		r.rebind(`SELECT id, owner_id, kind, name, color, icon FROM categories WHERE owner_id = ? AND id = ?`),
		ownerID, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %q: %w", id, ledger.ErrNotFound)
	}
	return c, err
}

func scanCategory(s scanner) (core.Category, error) {
	var (
		c           core.Category
		kind        string
		color, icon sql.NullString
	)
	if err := s.Scan(&c.ID, &c.OwnerID, &kind, &c.Name, &color, &icon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, err
		}
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Kind = core.Kind(kind)
	c.Color = color.String
	c.Icon = icon.String
	return c, nil
}

// ListAccounts implements ledger.AccountReader.
func (r *Repository) ListAccounts(ctx context.Context, ownerID string) ([]core.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		r.rebind(`SELECT id, owner_id, name, balance FROM bank_accounts WHERE owner_id = ? ORDER BY created_at_ns, id`),
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.BankAccount
	for rows.Next() {
		var a core.BankAccount
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// ListAssets implements ledger.AssetReader.
func (r *Repository) ListAssets(ctx context.Context, ownerID string) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		r.rebind(`SELECT id, owner_id, name, current_value, initial_value, acquired_on FROM assets WHERE owner_id = ? ORDER BY created_at_ns, id`),
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []core.Asset
	for rows.Next() {
		var a core.Asset
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Name, &a.CurrentValue, &a.InitialValue, &a.AcquiredOn); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return out, nil
}

// CreateCategory implements ledger.Writer.
func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO categories (id, owner_id, kind, name, color, icon, created_at_ns) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.OwnerID, string(c.Kind), c.Name, nullString(c.Color), nullString(c.Icon), r.stamp())
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved", "id", c.ID, "owner", c.OwnerID, "kind", c.Kind, "name", c.Name)
	return c, nil
}

// CreateTransaction implements ledger.Writer. The category must belong to
// the same owner.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var categoryID any
	if t.Category != nil {
		c, err := r.GetCategory(ctx, t.OwnerID, t.Category.ID)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Category = &core.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
		categoryID = c.ID
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO transactions (id, owner_id, kind, amount, date, description, category_id, created_at_ns) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.OwnerID, string(t.Kind), t.Amount, t.Date, t.Description, categoryID, r.stamp())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner", t.OwnerID,
		"kind", t.Kind,
		"amount", t.Amount.String(),
		"date", t.Date.String())
	return t, nil
}

// DeleteTransaction implements ledger.Writer.
func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		r.rebind(`DELETE FROM transactions WHERE owner_id = ? AND id = ?`), ownerID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %q: %w", id, ledger.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner", ownerID)
	return nil
}

// CreateAccount implements ledger.Writer.
func (r *Repository) CreateAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO bank_accounts (id, owner_id, name, balance, created_at_ns) VALUES (?, ?, ?, ?, ?)`),
		a.ID, a.OwnerID, a.Name, a.Balance, r.stamp())
	if err != nil {
		return core.BankAccount{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// CreateAsset implements ledger.Writer.
func (r *Repository) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO assets (id, owner_id, name, current_value, initial_value, acquired_on, created_at_ns) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.OwnerID, a.Name, a.CurrentValue, a.InitialValue, a.AcquiredOn, r.stamp())
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
