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
	"github.com/oficinapro/workshop-service/internal/pricing"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *slog.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger.With("component", "order-repository"),
	}
}

const orderColumns = `
	id, number, client_id, vehicle_id, type, status, current_km,
	complaint, diagnosis, observations,
	subtotal, discount_amount, discount_percentage, total_amount,
	payment_method, payment_status,
	start_date, completion_date, delivery_date, validity_date,
	created_at, updated_at
`

// Create inserts the order and its line items in one transaction.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.Number,
		order.ClientID,
		order.VehicleID,
		order.Type,
		order.Status,
		order.CurrentKM,
		nullString(order.Complaint),
		nullString(order.Diagnosis),
		nullString(order.Observations),
		order.Subtotal,
		order.DiscountAmount,
		order.DiscountPercentage,
		order.TotalAmount,
		nullString(string(order.PaymentMethod)),
		order.PaymentStatus,
		order.StartDate,
		order.CompletionDate,
		order.DeliveryDate,
		order.ValidityDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert order", "order_id", order.ID, "error", err)
		return err
	}

	if err := insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		r.logger.Error("failed to insert order items", "order_id", order.ID, "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("order created",
		"order_id", order.ID,
		"number", order.Number,
		"total", order.TotalAmount.String(),
	)
	return nil
}

// GetByID retrieves an order with its line items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND deleted_at IS NULL`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch order", "order_id", id, "error", err)
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// Update rewrites the order's mutable fields and replaces its item set.
func (r *PostgresOrderRepository) Update(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE orders
		SET current_km = $2, complaint = $3, diagnosis = $4, observations = $5,
		    subtotal = $6, discount_amount = $7, discount_percentage = $8,
		    total_amount = $9, payment_method = $10, updated_at = $11
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := tx.ExecContext(ctx, query,
		order.ID,
		order.CurrentKM,
		nullString(order.Complaint),
		nullString(order.Diagnosis),
		nullString(order.Observations),
		order.Subtotal,
		order.DiscountAmount,
		order.DiscountPercentage,
		order.TotalAmount,
		nullString(string(order.PaymentMethod)),
		order.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return err
	}
	if err := insertOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus updates the workflow state, stamping start and completion
// times for the transitions that define them.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, notes string) (*models.Order, error) {
	now := time.Now()

	var startDate, completionDate *time.Time
	switch status {
	case models.OrderStatusInProgress:
		startDate = &now
	case models.OrderStatusCompleted:
		completionDate = &now
	}

	query := `
		UPDATE orders
		SET status = $2,
		    observations = COALESCE(NULLIF($3, ''), observations),
		    start_date = COALESCE($4, start_date),
		    completion_date = COALESCE($5, completion_date),
		    updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING id
	`

	var returnedID string
	err := r.db.QueryRowContext(ctx, query, id, status, notes, startDate, completionDate, now).Scan(&returnedID)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to update order status", "order_id", id, "error", err)
		return nil, err
	}

	r.logger.Info("order status updated", "order_id", id, "new_status", status)
	return r.GetByID(ctx, id)
}

// UpdatePaymentStatus sets the payment state of an order.
func (r *PostgresOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`,
		id, status, time.Now(),
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("order payment status updated", "order_id", id, "payment_status", status)
	return nil
}

// List retrieves orders matching the filter, newest first, with the total
// match count for pagination.
func (r *PostgresOrderRepository) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	baseQuery := ` FROM orders WHERE deleted_at IS NULL`
	args := make([]interface{}, 0, 4)

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		baseQuery += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		baseQuery += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		baseQuery += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		baseQuery += fmt.Sprintf(" AND type = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	selectQuery := fmt.Sprintf(
		"SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, baseQuery, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, 0, err
		}
		order.Items = items
	}

	return orders, total, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, orderID string) ([]pricing.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, description, additional_info, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]pricing.LineItem, 0)
	for rows.Next() {
		var item pricing.LineItem
		var additionalInfo, productID sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.Kind,
			&item.Description,
			&additionalInfo,
			&productID,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		); err != nil {
			return nil, err
		}
		item.AdditionalInfo = additionalInfo.String
		item.ProductID = productID.String
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items []pricing.LineItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, kind, description, additional_info, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			item.ID,
			orderID,
			i,
			item.Kind,
			item.Description,
			nullString(item.AdditionalInfo),
			nullString(item.ProductID),
			item.Quantity,
			item.UnitPrice,
			item.LineTotal,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var currentKM sql.NullInt64
	var complaint, diagnosis, observations, paymentMethod sql.NullString
	var startDate, completionDate, deliveryDate, validityDate sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.Number,
		&order.ClientID,
		&order.VehicleID,
		&order.Type,
		&order.Status,
		&currentKM,
		&complaint,
		&diagnosis,
		&observations,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.DiscountPercentage,
		&order.TotalAmount,
		&paymentMethod,
		&order.PaymentStatus,
		&startDate,
		&completionDate,
		&deliveryDate,
		&validityDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currentKM.Valid {
		km := int(currentKM.Int64)
		order.CurrentKM = &km
	}
	order.Complaint = complaint.String
	order.Diagnosis = diagnosis.String
	order.Observations = observations.String
	order.PaymentMethod = models.PaymentMethod(paymentMethod.String)
	if startDate.Valid {
		order.StartDate = &startDate.Time
	}
	if completionDate.Valid {
		order.CompletionDate = &completionDate.Time
	}
	if deliveryDate.Valid {
		order.DeliveryDate = &deliveryDate.Time
	}
	if validityDate.Valid {
		order.ValidityDate = &validityDate.Time
	}

	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GenerateOrderID returns a new unique order identifier.
func GenerateOrderID() string {
	return "ord_" + uuid.NewString()
}

// GenerateOrderNumber returns a human-facing order number. Numbers are
// unique but intentionally shorter than the internal id.
func GenerateOrderNumber(t models.OrderType, now time.Time) string {
	prefix := "OS"
	if t == models.OrderTypeBudget {
		prefix = "ORC"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), uuid.NewString()[:8])
}
