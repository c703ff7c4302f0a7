package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/internity/storefront/internal/domain"
	_ "modernc.org/sqlite"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownSize     = errors.New("size not offered for product")
)

// Repository serves the static product catalog from an embedded sqlite
// database seeded by migrations. The catalog is read-only at runtime; the
// cart core never reads it back, line items capture their fields at add time.
type Repository struct {
	db *sql.DB
}

type Catalog interface {
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	PriceFor(ctx context.Context, id, size string) (float64, error)
	Close() error
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

const productColumns = `id, name, price, image_url, category, size, description, notes, sizes`

// ListProducts returns the catalog in seed order, optionally filtered by
// category. An empty category or "All" returns everything.
func (r *Repository) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY position`
	args := []any{}
	if category != "" && category != "All" {
		query = `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY position`
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	defer rows.Close()

	var product *domain.Product
	for rows.Next() {
		product, err = scanProduct(rows)
		if err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// PriceFor resolves the size-specific unit price before a line item is built.
// Products without explicit size options offer only their default size at the
// catalog price.
func (r *Repository) PriceFor(ctx context.Context, id, size string) (float64, error) {
	product, err := r.GetProduct(ctx, id)
	if err != nil {
		return 0, err
	}

	if len(product.Sizes) == 0 {
		if size == product.Size {
			return product.Price, nil
		}
		return 0, ErrUnknownSize
	}

	for _, option := range product.Sizes {
		if option.Size == size {
			return option.Price, nil
		}
	}
	return 0, ErrUnknownSize
}

func scanProduct(rows *sql.Rows) (*domain.Product, error) {
	p := &domain.Product{}
	var notesJSON, sizesJSON string
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Image,
		&p.Category,
		&p.Size,
		&p.Description,
		&notesJSON,
		&sizesJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if err := json.Unmarshal([]byte(notesJSON), &p.Notes); err != nil {
		return nil, fmt.Errorf("failed to parse notes for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(sizesJSON), &p.Sizes); err != nil {
		return nil, fmt.Errorf("failed to parse sizes for %s: %w", p.ID, err)
	}

	return p, nil
}
