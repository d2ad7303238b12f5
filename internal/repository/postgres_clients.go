package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
)

// PostgresClientRepository implements ClientRepository using PostgreSQL.
type PostgresClientRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresClientRepository(db *sql.DB, logger *slog.Logger) *PostgresClientRepository {
	return &PostgresClientRepository{
		db:     db,
		logger: logger.With("component", "client-repository"),
	}
}

const clientColumns = `
	id, name, email, phone, cpf_cnpj, address, city, state, zip_code,
	birth_date, notes, is_active, created_at, updated_at
`

func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		nullString(client.Email),
		nullString(client.Phone),
		nullString(client.CPFCNPJ),
		nullString(client.Address),
		nullString(client.City),
		nullString(client.State),
		nullString(client.ZipCode),
		client.BirthDate,
		nullString(client.Notes),
		client.IsActive,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert client", "client_id", client.ID, "error", err)
		return err
	}

	r.logger.Info("client created", "client_id", client.ID)
	return nil
}

func (r *PostgresClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch client", "client_id", id, "error", err)
		return nil, err
	}
	return client, nil
}

func (r *PostgresClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3, phone = $4, cpf_cnpj = $5, address = $6,
		    city = $7, state = $8, zip_code = $9, notes = $10, is_active = $11,
		    updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		nullString(client.Email),
		nullString(client.Phone),
		nullString(client.CPFCNPJ),
		nullString(client.Address),
		nullString(client.City),
		nullString(client.State),
		nullString(client.ZipCode),
		nullString(client.Notes),
		client.IsActive,
		client.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PostgresClientRepository) List(ctx context.Context, limit, offset int) ([]*models.Client, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, client)
	}
	return clients, total, rows.Err()
}

func scanClient(row rowScanner) (*models.Client, error) {
	var client models.Client
	var email, phone, cpfCnpj, address, city, state, zipCode, notes sql.NullString
	var birthDate sql.NullTime

	err := row.Scan(
		&client.ID,
		&client.Name,
		&email,
		&phone,
		&cpfCnpj,
		&address,
		&city,
		&state,
		&zipCode,
		&birthDate,
		&notes,
		&client.IsActive,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	client.Email = email.String
	client.Phone = phone.String
	client.CPFCNPJ = cpfCnpj.String
	client.Address = address.String
	client.City = city.String
	client.State = state.String
	client.ZipCode = zipCode.String
	client.Notes = notes.String
	if birthDate.Valid {
		client.BirthDate = &birthDate.Time
	}

	return &client, nil
}

// GenerateClientID returns a new unique client identifier.
func GenerateClientID() string {
	return "cli_" + uuid.NewString()
}
