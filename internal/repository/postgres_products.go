package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *slog.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{
		db:     db,
		logger: logger.With("component", "product-repository"),
	}
}

const productColumns = `
	id, code, name, description, brand, unit, cost_price, sale_price,
	current_stock, min_stock, max_stock, location, is_active,
	created_at, updated_at
`

func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		nullString(product.Code),
		product.Name,
		nullString(product.Description),
		nullString(product.Brand),
		product.Unit,
		product.CostPrice,
		product.SalePrice,
		product.CurrentStock,
		product.MinStock,
		product.MaxStock,
		nullString(product.Location),
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert product", "product_id", product.ID, "error", err)
		return err
	}

	r.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	return nil
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch product", "product_id", id, "error", err)
		return nil, err
	}
	return product, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET code = $2, name = $3, description = $4, brand = $5, unit = $6,
		    cost_price = $7, sale_price = $8, min_stock = $9, max_stock = $10,
		    location = $11, is_active = $12, updated_at = $13
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ID,
		nullString(product.Code),
		product.Name,
		nullString(product.Description),
		nullString(product.Brand),
		product.Unit,
		product.CostPrice,
		product.SalePrice,
		product.MinStock,
		product.MaxStock,
		nullString(product.Location),
		product.IsActive,
		product.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresProductRepository) List(ctx context.Context, limit, offset int) ([]*models.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	return products, total, rows.Err()
}

// ListLowStock returns active products at or below their minimum stock.
func (r *PostgresProductRepository) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE is_active AND current_stock <= min_stock
		 ORDER BY current_stock - min_stock`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// AdjustStock applies a stock movement and records it, both in one
// transaction. An "out" movement that would drive stock negative fails
// validation and changes nothing.
func (r *PostgresProductRepository) AdjustStock(ctx context.Context, movement *models.StockMovement) error {
	delta := movement.Quantity
	if movement.Type == models.StockMovementOut {
		delta = -delta
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var newStock int
	err = tx.QueryRowContext(ctx, `
		UPDATE products
		SET current_stock = current_stock + $2, updated_at = $3
		WHERE id = $1
		RETURNING current_stock
	`, movement.ProductID, delta, time.Now()).Scan(&newStock)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return err
	}
	if newStock < 0 {
		return apperrors.NewValidationError("quantity",
			fmt.Sprintf("insufficient stock for product %s", movement.ProductID))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, order_id, type, quantity, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		movement.ID,
		movement.ProductID,
		nullString(movement.OrderID),
		movement.Type,
		movement.Quantity,
		nullString(movement.Reason),
		movement.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("stock adjusted",
		"product_id", movement.ProductID,
		"type", movement.Type,
		"quantity", movement.Quantity,
		"new_stock", newStock,
	)
	return nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	var code, description, brand, location sql.NullString

	err := row.Scan(
		&product.ID,
		&code,
		&product.Name,
		&description,
		&brand,
		&product.Unit,
		&product.CostPrice,
		&product.SalePrice,
		&product.CurrentStock,
		&product.MinStock,
		&product.MaxStock,
		&location,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Code = code.String
	product.Description = description.String
	product.Brand = brand.String
	product.Location = location.String

	return &product, nil
}

// GenerateProductID returns a new unique product identifier.
func GenerateProductID() string {
	return "prd_" + uuid.NewString()
}

// GenerateMovementID returns a new unique stock movement identifier.
func GenerateMovementID() string {
	return "mov_" + uuid.NewString()
}
