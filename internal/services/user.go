package services

import (
	"context"
	"strings"

	"breadit/internal/db"
	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type usernameInput struct {
	Name string `validate:"min=3,max=32,alphanum"`
}

type UserServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(cfg UserServiceConfig) (*UserService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &UserService{db: cfg.Database, logger: loggerOrNop(cfg.Logger)}, nil
}

// ChangeUsername claims name for the viewer. Claiming a name the viewer
// already holds succeeds without a write.
func (s *UserService) ChangeUsername(ctx context.Context, viewerID, name string) (*models.User, error) {
	const op = "users.rename"
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	in := usernameInput{Name: strings.TrimSpace(name)}
	if err := checkInput(op, in); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&user, "id = ?", viewerID).Error; err != nil {
			return err
		}
		if user.Username != nil && *user.Username == in.Name {
			return nil
		}
		var owners int64
		err := tx.Model(&models.User{}).
			Where("username = ? AND id <> ?", in.Name, viewerID).
			Count(&owners).Error
		if err != nil {
			return err
		}
		if owners > 0 {
			return newError(op, ErrConflict, "username is taken")
		}
		err = tx.Model(&models.User{}).Where("id = ?", viewerID).Update("username", in.Name).Error
		if err != nil {
			if db.IsUniqueViolation(err) {
				return &Error{Op: op, Kind: ErrConflict, Detail: "username is taken", Err: err}
			}
			return err
		}
		user.Username = &in.Name
		return nil
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	s.logger.Info("username changed", zap.String("user_id", viewerID), zap.String("username", in.Name))
	return &user, nil
}
