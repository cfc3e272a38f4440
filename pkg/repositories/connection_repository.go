package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// ConnectionRepository defines the interface for connection data access.
// Passwords are stored as encrypted TEXT - encryption/decryption is handled
// by the service layer.
type ConnectionRepository interface {
	// Create inserts a new connection. Returns ErrConflict if the name
	// already exists for the user.
	Create(ctx context.Context, conn *models.Connection, encryptedPassword string) error

	// GetByID retrieves a connection by ID for a user. Returns the model and
	// the encrypted password.
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.Connection, string, error)

	// GetActive retrieves the user's active connection, or ErrNoActiveConnection.
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Connection, string, error)

	// List retrieves all connections for a user in creation order.
	List(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error)

	// SetActive marks the given connection active and all of the user's
	// other connections inactive, in a single transaction.
	SetActive(ctx context.Context, userID uuid.UUID, id int64) error

	// Update modifies an existing connection's settings and credentials.
	Update(ctx context.Context, userID uuid.UUID, id int64, conn *models.Connection, encryptedPassword string) error

	// Delete removes a connection by ID.
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

// connectionRepository implements ConnectionRepository using PostgreSQL.
type connectionRepository struct {
	db *database.DB
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(db *database.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Create inserts a new connection.
func (r *connectionRepository) Create(ctx context.Context, conn *models.Connection, encryptedPassword string) error {
	conn.CreatedAt = time.Now()

	query := `
		INSERT INTO connections (user_id, name, account, username, password_enc, role, warehouse, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		conn.UserID,
		conn.Name,
		conn.Account,
		conn.Username,
		encryptedPassword,
		conn.Role,
		conn.Warehouse,
		conn.IsActive,
		conn.CreatedAt,
	).Scan(&conn.ID)
	if err != nil {
		// Unique constraint violation (PostgreSQL error code 23505)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create connection: %w", err)
	}

	return nil
}

// GetByID retrieves a connection by ID for a user.
func (r *connectionRepository) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.Connection, string, error) {
	query := `
		SELECT id, user_id, name, account, username, password_enc, role, warehouse, is_active, created_at
		FROM connections
		WHERE user_id = $1 AND id = $2`

	return r.scanOne(r.db.QueryRow(ctx, query, userID, id))
}

// GetActive retrieves the user's active connection.
func (r *connectionRepository) GetActive(ctx context.Context, userID uuid.UUID) (*models.Connection, string, error) {
	query := `
		SELECT id, user_id, name, account, username, password_enc, role, warehouse, is_active, created_at
		FROM connections
		WHERE user_id = $1 AND is_active`

	conn, enc, err := r.scanOne(r.db.QueryRow(ctx, query, userID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", apperrors.ErrNoActiveConnection
	}
	return conn, enc, err
}

func (r *connectionRepository) scanOne(row pgx.Row) (*models.Connection, string, error) {
	var conn models.Connection
	var encryptedPassword string
	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.Name,
		&conn.Account,
		&conn.Username,
		&encryptedPassword,
		&conn.Role,
		&conn.Warehouse,
		&conn.IsActive,
		&conn.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", apperrors.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to get connection: %w", err)
	}

	return &conn, encryptedPassword, nil
}

// List retrieves all connections for a user in creation order. Clients
// preserve this order as-is.
func (r *connectionRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	query := `
		SELECT id, user_id, name, account, username, role, warehouse, is_active, created_at
		FROM connections
		WHERE user_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		var conn models.Connection
		err := rows.Scan(
			&conn.ID,
			&conn.UserID,
			&conn.Name,
			&conn.Account,
			&conn.Username,
			&conn.Role,
			&conn.Warehouse,
			&conn.IsActive,
			&conn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		connections = append(connections, &conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return connections, nil
}

// SetActive marks the given connection active and clears the flag on all of
// the user's other connections. Both updates run in one transaction so the
// single-active invariant holds at every commit point.
func (r *connectionRepository) SetActive(ctx context.Context, userID uuid.UUID, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	if _, err := tx.Exec(ctx,
		`UPDATE connections SET is_active = FALSE WHERE user_id = $1 AND is_active`,
		userID); err != nil {
		return fmt.Errorf("failed to clear active flags: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE connections SET is_active = TRUE WHERE user_id = $1 AND id = $2`,
		userID, id)
	if err != nil {
		return fmt.Errorf("failed to set active connection: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update modifies an existing connection's settings and credentials.
func (r *connectionRepository) Update(ctx context.Context, userID uuid.UUID, id int64, conn *models.Connection, encryptedPassword string) error {
	query := `
		UPDATE connections
		SET name = $3, account = $4, username = $5, password_enc = $6, role = $7, warehouse = $8
		WHERE user_id = $1 AND id = $2`

	result, err := r.db.Exec(ctx, query, userID, id,
		conn.Name, conn.Account, conn.Username, encryptedPassword, conn.Role, conn.Warehouse)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to update connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a connection by ID.
func (r *connectionRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM connections WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure connectionRepository implements ConnectionRepository at compile time.
var _ ConnectionRepository = (*connectionRepository)(nil)
