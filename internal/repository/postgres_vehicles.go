package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
)

// PostgresVehicleRepository implements VehicleRepository using PostgreSQL.
type PostgresVehicleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresVehicleRepository(db *sql.DB, logger *slog.Logger) *PostgresVehicleRepository {
	return &PostgresVehicleRepository{
		db:     db,
		logger: logger.With("component", "vehicle-repository"),
	}
}

const vehicleColumns = `
	id, client_id, plate, chassis, year, manufacturer, model, color,
	current_km, additional_info, is_active, created_at, updated_at
`

func (r *PostgresVehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.ClientID,
		vehicle.Plate,
		nullString(vehicle.Chassis),
		vehicle.Year,
		vehicle.Manufacturer,
		vehicle.Model,
		nullString(vehicle.Color),
		vehicle.CurrentKM,
		nullString(vehicle.AdditionalInfo),
		vehicle.IsActive,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert vehicle", "vehicle_id", vehicle.ID, "error", err)
		return err
	}

	r.logger.Info("vehicle created", "vehicle_id", vehicle.ID, "plate", vehicle.Plate)
	return nil
}

func (r *PostgresVehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch vehicle", "vehicle_id", id, "error", err)
		return nil, err
	}
	return vehicle, nil
}

func (r *PostgresVehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		UPDATE vehicles
		SET plate = $2, chassis = $3, year = $4, manufacturer = $5, model = $6,
		    color = $7, current_km = $8, additional_info = $9, is_active = $10,
		    updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.Plate,
		nullString(vehicle.Chassis),
		vehicle.Year,
		vehicle.Manufacturer,
		vehicle.Model,
		nullString(vehicle.Color),
		vehicle.CurrentKM,
		nullString(vehicle.AdditionalInfo),
		vehicle.IsActive,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresVehicleRepository) ListByClientID(ctx context.Context, clientID string) ([]*models.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE client_id = $1 ORDER BY created_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]*models.Vehicle, 0)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *PostgresVehicleRepository) List(ctx context.Context, limit, offset int) ([]*models.Vehicle, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	vehicles := make([]*models.Vehicle, 0)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, total, rows.Err()
}

func scanVehicle(row rowScanner) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	var chassis, color, additionalInfo sql.NullString

	err := row.Scan(
		&vehicle.ID,
		&vehicle.ClientID,
		&vehicle.Plate,
		&chassis,
		&vehicle.Year,
		&vehicle.Manufacturer,
		&vehicle.Model,
		&color,
		&vehicle.CurrentKM,
		&additionalInfo,
		&vehicle.IsActive,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	vehicle.Chassis = chassis.String
	vehicle.Color = color.String
	vehicle.AdditionalInfo = additionalInfo.String

	return &vehicle, nil
}

// GenerateVehicleID returns a new unique vehicle identifier.
func GenerateVehicleID() string {
	return "veh_" + uuid.NewString()
}
