package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// DefaultTable is the catalog table name used when none is configured
const DefaultTable = "products"

// uniqueViolation is the SQLSTATE for unique_violation
const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps the catalog in a PostgreSQL table. SKUs other than
// the sentinel are backed by a partial unique index, so a write that lost
// the gatekeeper race fails with domain.ErrDuplicateSKU.
type PostgresStore struct {
	pool         *pgxpool.Pool
	table        string
	skuIndex     string
	variantIndex string
}

// NewPostgresStore creates a store over pool using table (DefaultTable when empty)
func NewPostgresStore(pool *pgxpool.Pool, table string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		pool:         pool,
		table:        pgx.Identifier{table}.Sanitize(),
		skuIndex:     pgx.Identifier{table + "_sku_unique"}.Sanitize(),
		variantIndex: pgx.Identifier{table + "_name_variant"}.Sanitize(),
	}
}

// EnsureSchema creates the catalog table and its indexes if missing
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			sku          text NOT NULL DEFAULT '-',
			item_name    text NOT NULL,
			category     text NOT NULL DEFAULT '',
			brand_name   text NOT NULL DEFAULT '-',
			variant_name text NOT NULL DEFAULT '',
			price        numeric NOT NULL DEFAULT 0 CHECK (price >= 0),
			created_at   timestamptz NOT NULL DEFAULT clock_timestamp()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ` + s.skuIndex + ` ON ` + s.table + ` (sku) WHERE sku <> '-'`,
		`CREATE INDEX IF NOT EXISTS ` + s.variantIndex + ` ON ` + s.table + ` (item_name, variant_name)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

const productColumns = `id::text, sku, item_name, category, brand_name, variant_name, price::text, created_at`

// Create inserts product and returns it with the assigned id and created_at
func (s *PostgresStore) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return s.insert(ctx, s.pool, product)
}

func (s *PostgresStore) insert(ctx context.Context, q querier, product *domain.Product) (*domain.Product, error) {
	row := q.QueryRow(ctx, `
		INSERT INTO `+s.table+` (sku, item_name, category, brand_name, variant_name, price)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric)
		RETURNING `+productColumns,
		product.SKU, product.ItemName, product.Category, product.BrandName,
		product.VariantName, product.Price.String())

	created, err := scanProduct(row)
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

// Update replaces every field of record id except id and created_at
func (s *PostgresStore) Update(ctx context.Context, id string, product *domain.Product) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE `+s.table+`
		SET sku = $2, item_name = $3, category = $4, brand_name = $5, variant_name = $6, price = $7::text::numeric
		WHERE id::text = $1`,
		id, product.SKU, product.ItemName, product.Category, product.BrandName,
		product.VariantName, product.Price.String())
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes record id
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id::text = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// FindBySKU returns the newest record with sku
func (s *PostgresStore) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM `+s.table+`
		WHERE sku = $1 ORDER BY created_at DESC LIMIT 1`, sku)
	return s.findOne(row)
}

// FindByNameVariant returns the newest record with the exact name and variant
func (s *PostgresStore) FindByNameVariant(ctx context.Context, name, variant string) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM `+s.table+`
		WHERE item_name = $1 AND variant_name = $2 ORDER BY created_at DESC LIMIT 1`, name, variant)
	return s.findOne(row)
}

func (s *PostgresStore) findOne(row pgx.Row) (*domain.Product, error) {
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

// ListAll returns every record, newest first
func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+` FROM `+s.table+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translateError(err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return products, nil
}

// ReplaceAll deletes the catalog and inserts products in one transaction
func (s *PostgresStore) ReplaceAll(ctx context.Context, products []domain.Product) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+s.table); err != nil {
			return err
		}
		for i := range products {
			if _, err := s.insert(ctx, tx, &products[i]); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		return nil
	})
}

// UpsertBySKU updates records sharing a non-sentinel SKU and inserts the
// rest, in one transaction
func (s *PostgresStore) UpsertBySKU(ctx context.Context, products []domain.Product) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		for i := range products {
			p := &products[i]
			_, err := tx.Exec(ctx, `
				INSERT INTO `+s.table+` (sku, item_name, category, brand_name, variant_name, price)
				VALUES ($1, $2, $3, $4, $5, $6::text::numeric)
				ON CONFLICT (sku) WHERE sku <> '-' DO UPDATE
				SET item_name = EXCLUDED.item_name,
				    category = EXCLUDED.category,
				    brand_name = EXCLUDED.brand_name,
				    variant_name = EXCLUDED.variant_name,
				    price = EXCLUDED.price`,
				p.SKU, p.ItemName, p.Category, p.BrandName, p.VariantName, p.Price.String())
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, translateError(err))
			}
		}
		return nil
	})
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return translateError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return translateError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return translateError(err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.SKU, &p.ItemName, &p.Category, &p.BrandName,
		&p.VariantName, &price, &p.CreatedAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", price, err)
	}
	p.Price = d
	return &p, nil
}

// translateError maps a SKU unique violation to domain.ErrDuplicateSKU
// and every other database failure to domain.ErrStoreUnavailable
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrDuplicateSKU) || errors.Is(err, domain.ErrStoreUnavailable) ||
		errors.Is(err, domain.ErrProductNotFound) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && strings.HasSuffix(pgErr.ConstraintName, "_sku_unique") {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSKU, pgErr.Detail)
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
