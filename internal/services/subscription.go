package services

import (
	"context"

	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// SubscriptionService manages community membership, the gate for posting.
type SubscriptionService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSubscriptionService(cfg SubscriptionServiceConfig) (*SubscriptionService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &SubscriptionService{db: cfg.Database, logger: loggerOrNop(cfg.Logger)}, nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, viewerID, subbreaditID string) (bool, error) {
	if viewerID == "" || subbreaditID == "" {
		return false, nil
	}
	ok, err := isSubscribed(s.db.WithContext(ctx), viewerID, subbreaditID)
	if err != nil {
		return false, storeError("subscriptions.check", err)
	}
	return ok, nil
}

func isSubscribed(tx *gorm.DB, userID, subbreaditID string) (bool, error) {
	var count int64
	err := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND subbreadit_id = ?", userID, subbreaditID).
		Count(&count).Error
	return count > 0, err
}

// Subscribe joins the community and returns its name. Joining twice is a no-op.
func (s *SubscriptionService) Subscribe(ctx context.Context, viewerID, subbreaditID string) (string, error) {
	const op = "subscriptions.subscribe"
	community, err := s.community(ctx, op, viewerID, subbreaditID)
	if err != nil {
		return "", err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&models.Subscription{UserID: viewerID, SubbreaditID: community.ID}).Error
	if err != nil {
		return "", storeError(op, err)
	}
	s.logger.Debug("subscribed", zap.String("user_id", viewerID), zap.String("subbreadit", community.Name))
	return community.Name, nil
}

// Unsubscribe leaves the community. Leaving when not subscribed is a no-op;
// the creator cannot leave their own community.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, viewerID, subbreaditID string) (string, error) {
	const op = "subscriptions.unsubscribe"
	community, err := s.community(ctx, op, viewerID, subbreaditID)
	if err != nil {
		return "", err
	}
	if community.CreatorID != nil && *community.CreatorID == viewerID {
		return "", newError(op, ErrForbidden, "you can't unsubscribe from your own subbreadit")
	}
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND subbreadit_id = ?", viewerID, community.ID).
		Delete(&models.Subscription{}).Error
	if err != nil {
		return "", storeError(op, err)
	}
	s.logger.Debug("unsubscribed", zap.String("user_id", viewerID), zap.String("subbreadit", community.Name))
	return community.Name, nil
}

// Subscribed lists the communities the viewer belongs to.
func (s *SubscriptionService) Subscribed(ctx context.Context, viewerID string) ([]models.Subbreadit, error) {
	const op = "subscriptions.list"
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	var communities []models.Subbreadit
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&models.Subscription{}).Select("subbreadit_id").Where("user_id = ?", viewerID)).
		Order("name ASC").
		Find(&communities).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return communities, nil
}

func (s *SubscriptionService) community(ctx context.Context, op, viewerID, subbreaditID string) (*models.Subbreadit, error) {
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	if !models.IsID(subbreaditID) {
		return nil, newError(op, ErrInvalidInput, "subbreaditId is not a valid identifier")
	}
	var community models.Subbreadit
	if err := s.db.WithContext(ctx).Take(&community, "id = ?", subbreaditID).Error; err != nil {
		return nil, storeError(op, err)
	}
	return &community, nil
}
