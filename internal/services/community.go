package services

import (
	"context"
	"strings"

	"breadit/internal/db"
	"breadit/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const searchLimit = 5

type communityInput struct {
	Name string `validate:"min=3,max=21,alphanum"`
}

type CommunityServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

type CommunityService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCommunityService(cfg CommunityServiceConfig) (*CommunityService, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	return &CommunityService{db: cfg.Database, logger: loggerOrNop(cfg.Logger)}, nil
}

// Create makes a new community owned by the viewer and subscribes them to it.
func (s *CommunityService) Create(ctx context.Context, viewerID, name string) (*models.Subbreadit, error) {
	const op = "subbreadits.create"
	if err := requireViewer(op, viewerID); err != nil {
		return nil, err
	}
	in := communityInput{Name: strings.TrimSpace(name)}
	if err := checkInput(op, in); err != nil {
		return nil, err
	}

	community := models.Subbreadit{Name: in.Name, CreatorID: &viewerID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Subbreadit{}).Where("name = ?", in.Name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return newError(op, ErrConflict, "subbreadit already exists")
		}
		if err := tx.Omit(clause.Associations).Create(&community).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return &Error{Op: op, Kind: ErrConflict, Detail: "subbreadit already exists", Err: err}
			}
			return err
		}
		return tx.Omit(clause.Associations).
			Create(&models.Subscription{UserID: viewerID, SubbreaditID: community.ID}).Error
	})
	if err != nil {
		err = storeError(op, err)
		s.logger.Warn("create subbreadit failed", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	community.SubscriberCount = 1
	s.logger.Info("subbreadit created", zap.String("subbreadit_id", community.ID), zap.String("name", community.Name))
	return &community, nil
}

// GetByName loads a community and its subscriber count.
func (s *CommunityService) GetByName(ctx context.Context, name string) (*models.Subbreadit, error) {
	const op = "subbreadits.get"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(op, ErrInvalidInput, "name is required")
	}
	var community models.Subbreadit
	if err := s.db.WithContext(ctx).Take(&community, "name = ?", name).Error; err != nil {
		return nil, storeError(op, err)
	}
	counts, err := s.subscriberCounts(ctx, []string{community.ID})
	if err != nil {
		return nil, storeError(op, err)
	}
	community.SubscriberCount = counts[community.ID]
	return &community, nil
}

// Search matches community names by case-insensitive prefix.
func (s *CommunityService) Search(ctx context.Context, query string) ([]models.Subbreadit, error) {
	const op = "subbreadits.search"
	query = strings.TrimSpace(query)
	// Only alphanumeric prefixes are searched; anything else cannot name a community.
	if validate.Var(query, "required,alphanum") != nil {
		return []models.Subbreadit{}, nil
	}
	var found []models.Subbreadit
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", strings.ToLower(query)+"%").
		Order("name ASC").
		Limit(searchLimit).
		Find(&found).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	if len(found) == 0 {
		return found, nil
	}

	ids := make([]string, len(found))
	for i := range found {
		ids[i] = found[i].ID
	}
	counts, err := s.subscriberCounts(ctx, ids)
	if err != nil {
		return nil, storeError(op, err)
	}
	for i := range found {
		found[i].SubscriberCount = counts[found[i].ID]
	}
	return found, nil
}

func (s *CommunityService) subscriberCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	var rows []struct {
		SubbreaditID string
		Total        int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Select("subbreadit_id, COUNT(*) AS total").
		Where("subbreadit_id IN ?", ids).
		Group("subbreadit_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SubbreaditID] = row.Total
	}
	return counts, nil
}
