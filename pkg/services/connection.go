package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/config"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/crypto"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/warehouse"
)

// ConnectionInput carries the fields accepted when creating or updating a
// connection. Empty optional fields fall back to configured defaults on
// create and to stored values on update.
type ConnectionInput struct {
	Name      string
	Account   string
	Username  string
	Password  string
	Role      string
	Warehouse string
}

// ConnectionService defines the interface for connection operations.
type ConnectionService interface {
	// List retrieves all of a user's connections in server order.
	List(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error)

	// Create validates input, tests the credentials against the live
	// warehouse, then persists with the secret encrypted. The user's first
	// connection is activated automatically.
	Create(ctx context.Context, userID uuid.UUID, input ConnectionInput) (*models.Connection, error)

	// Update modifies settings/credentials. Changed credentials are
	// re-tested against the warehouse before persisting.
	Update(ctx context.Context, userID uuid.UUID, id int64, input ConnectionInput) (*models.Connection, error)

	// Activate marks the connection active and all others inactive.
	Activate(ctx context.Context, userID uuid.UUID, id int64) (*models.Connection, error)

	// Delete removes a connection.
	Delete(ctx context.Context, userID uuid.UUID, id int64) error

	// Test checks credentials against the live warehouse without persisting.
	Test(ctx context.Context, input ConnectionInput) error

	// OpenActive opens a warehouse session on the user's active connection.
	// The caller owns the returned session and must close it.
	OpenActive(ctx context.Context, userID uuid.UUID) (warehouse.Conn, *models.Connection, error)
}

type connectionService struct {
	repo      repositories.ConnectionRepository
	encryptor *crypto.CredentialEncryptor
	opener    warehouse.Opener
	activity  ActivityRecorder
	defaults  config.SnowflakeConfig
	logger    *zap.Logger
}

// NewConnectionService creates a new connection service with dependencies.
func NewConnectionService(
	repo repositories.ConnectionRepository,
	encryptor *crypto.CredentialEncryptor,
	opener warehouse.Opener,
	activity ActivityRecorder,
	defaults config.SnowflakeConfig,
	logger *zap.Logger,
) ConnectionService {
	return &connectionService{
		repo:      repo,
		encryptor: encryptor,
		opener:    opener,
		activity:  activity,
		defaults:  defaults,
		logger:    logger,
	}
}

func (s *connectionService) List(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	return s.repo.List(ctx, userID)
}

func (s *connectionService) Create(ctx context.Context, userID uuid.UUID, input ConnectionInput) (*models.Connection, error) {
	if err := s.validateInput(&input, true); err != nil {
		return nil, err
	}

	// Credentials must work before anything is persisted.
	if err := s.Test(ctx, input); err != nil {
		return nil, err
	}

	encrypted, err := s.encryptor.Encrypt(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
	}

	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	conn := &models.Connection{
		UserID:    userID,
		Name:      input.Name,
		Account:   input.Account,
		Username:  input.Username,
		Role:      input.Role,
		Warehouse: input.Warehouse,
	}

	if err := s.repo.Create(ctx, conn, encrypted); err != nil {
		return nil, err
	}

	// First connection becomes active so the dashboard works immediately.
	if len(existing) == 0 {
		if err := s.repo.SetActive(ctx, userID, conn.ID); err != nil {
			return nil, err
		}
		conn.IsActive = true
	}

	s.logger.Info("Created connection",
		zap.Int64("connection_id", conn.ID),
		zap.String("account", conn.Account))
	s.activity.Record(ctx, userID, models.ActivityConnectionCreated, conn.Name)

	return conn, nil
}

func (s *connectionService) Update(ctx context.Context, userID uuid.UUID, id int64, input ConnectionInput) (*models.Connection, error) {
	current, storedEncrypted, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if input.Name != "" {
		merged.Name = input.Name
	}
	if input.Account != "" {
		merged.Account = input.Account
	}
	if input.Username != "" {
		merged.Username = input.Username
	}
	if input.Role != "" {
		merged.Role = input.Role
	}
	if input.Warehouse != "" {
		merged.Warehouse = input.Warehouse
	}

	password := input.Password
	encrypted := storedEncrypted
	if password != "" {
		encrypted, err = s.encryptor.Encrypt(password)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
		}
	} else {
		password, err = s.encryptor.Decrypt(storedEncrypted)
		if err != nil {
			return nil, apperrorsCredentials(err)
		}
	}

	// Re-test whenever anything that affects connectivity changed.
	if input.Account != "" || input.Username != "" || input.Password != "" ||
		input.Role != "" || input.Warehouse != "" {
		testInput := ConnectionInput{
			Account:   merged.Account,
			Username:  merged.Username,
			Password:  password,
			Role:      merged.Role,
			Warehouse: merged.Warehouse,
		}
		if err := s.Test(ctx, testInput); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, userID, id, &merged, encrypted); err != nil {
		return nil, err
	}

	return &merged, nil
}

func (s *connectionService) Activate(ctx context.Context, userID uuid.UUID, id int64) (*models.Connection, error) {
	if err := s.repo.SetActive(ctx, userID, id); err != nil {
		return nil, err
	}

	conn, _, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Activated connection", zap.Int64("connection_id", id))
	s.activity.Record(ctx, userID, models.ActivityConnectionActivated, conn.Name)

	return conn, nil
}

func (s *connectionService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	conn, _, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("Deleted connection", zap.Int64("connection_id", id))
	s.activity.Record(ctx, userID, models.ActivityConnectionDeleted, conn.Name)

	return nil
}

func (s *connectionService) Test(ctx context.Context, input ConnectionInput) error {
	cfg := warehouse.Config{
		Account:        input.Account,
		Username:       input.Username,
		Password:       input.Password,
		Role:           input.Role,
		Warehouse:      input.Warehouse,
		ConnectTimeout: time.Duration(s.defaults.ConnectTimeoutSeconds) * time.Second,
	}

	conn, err := s.opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.Ping(ctx)
}

func (s *connectionService) OpenActive(ctx context.Context, userID uuid.UUID) (warehouse.Conn, *models.Connection, error) {
	active, encrypted, err := s.repo.GetActive(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	password, err := s.encryptor.Decrypt(encrypted)
	if err != nil {
		return nil, nil, apperrorsCredentials(err)
	}

	conn, err := s.opener.Open(ctx, warehouse.Config{
		Account:        active.Account,
		Username:       active.Username,
		Password:       password,
		Role:           active.Role,
		Warehouse:      active.Warehouse,
		ConnectTimeout: time.Duration(s.defaults.ConnectTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}

	return conn, active, nil
}

// validateInput checks required fields and applies configured defaults.
func (s *connectionService) validateInput(input *ConnectionInput, creating bool) error {
	if creating {
		if input.Name == "" {
			return fmt.Errorf("connection name is required")
		}
		if input.Account == "" {
			return fmt.Errorf("account identifier is required")
		}
		if input.Username == "" {
			return fmt.Errorf("username is required")
		}
		if input.Password == "" {
			return fmt.Errorf("password is required")
		}
	}

	if input.Role == "" {
		input.Role = s.defaults.DefaultRole
	}
	if input.Warehouse == "" {
		input.Warehouse = s.defaults.DefaultWarehouse
	}

	return nil
}

var _ ConnectionService = (*connectionService)(nil)
