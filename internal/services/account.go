package services

import (
	"context"
	"errors"
	"strings"

	"breadit/internal/db"
	"breadit/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type AccountServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
	// Cost is the bcrypt work factor. Zero means bcrypt.DefaultCost.
	Cost int
}

// AccountService is the local identity provider. It only proves who the
// viewer is; sessions are kept by the HTTP layer.
type AccountService struct {
	db     *gorm.DB
	logger *zap.Logger
	cost   int
}

func NewAccountService(cfg AccountServiceConfig) (*AccountService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{db: cfg.Database, logger: loggerOrNop(cfg.Logger), cost: cost}, nil
}

func (s *AccountService) Register(ctx context.Context, in Credentials) (*models.User, error) {
	const op = "accounts.register"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := checkInput(op, in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, &Error{Op: op, Kind: ErrInvalidInput, Detail: "password cannot be used", Err: err}
	}

	user := models.User{Email: in.Email, PasswordHash: string(hash)}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &Error{Op: op, Kind: ErrConflict, Detail: "email is already registered", Err: err}
		}
		return nil, storeError(op, err)
	}
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return &user, nil
}

// Authenticate returns the user owning the credentials. Unknown email and
// wrong password fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, in Credentials) (*models.User, error) {
	const op = "accounts.login"
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, newError(op, ErrInvalidInput, "email and password are required")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(op, ErrUnauthenticated, "invalid email or password")
		}
		return nil, storeError(op, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, newError(op, ErrUnauthenticated, "invalid email or password")
	}
	return &user, nil
}

// Get resolves a session's user id.
func (s *AccountService) Get(ctx context.Context, userID string) (*models.User, error) {
	const op = "accounts.get"
	if err := requireViewer(op, userID); err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(op, ErrUnauthenticated, "session user no longer exists")
		}
		return nil, storeError(op, err)
	}
	return &user, nil
}
