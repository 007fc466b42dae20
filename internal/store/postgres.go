package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool used by the repositories.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NormalizeDatabaseURL rewrites postgresql:// to postgres:// and disables TLS
// when no sslmode is given.
func NormalizeDatabaseURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if databaseURL != "" && !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL += separator + "sslmode=disable"
	}
	return databaseURL
}

// OpenPool connects to PostgreSQL and checks the connection.
func OpenPool(ctx context.Context, databaseURL string, timeout time.Duration) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is not configured")
	}
	cfg, err := pgxpool.ParseConfig(NormalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

const listCategoriesSQL = `SELECT id, nombre FROM gastos_catgastos ORDER BY id`

// PostgresCatalog reads expense categories from the gastos_catgastos table.
type PostgresCatalog struct {
	db     DB
	logger logging.Logger
}

// NewPostgresCatalog creates a PostgresCatalog.
func NewPostgresCatalog(db DB, logger logging.Logger) *PostgresCatalog {
	return &PostgresCatalog{db: db, logger: logging.OrDefault(logger)}
}

// ListCategories implements CatalogProvider.
func (p *PostgresCatalog) ListCategories(ctx context.Context) (models.CategoryCatalog, error) {
	rows, err := p.db.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	catalog := models.CategoryCatalog{}
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		catalog[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	p.logger.Info("Categories loaded from database", logging.F(logging.FieldCount, len(catalog)))
	return catalog, nil
}
