package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mdxpad/internal/models"
)

type GenerationRecordRepository interface {
	Create(ctx context.Context, record *models.GenerationRecord) error
	Finish(ctx context.Context, sessionID, state, strategy, errText string, outputLength int) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.GenerationRecord, error)
	List(ctx context.Context, limit int) ([]models.GenerationRecord, error)
	DeleteAll(ctx context.Context) error
}

type generationRecordRepository struct {
	db *gorm.DB
}

func NewGenerationRecordRepository(db *gorm.DB) GenerationRecordRepository {
	return &generationRecordRepository{db: db}
}

func (r *generationRecordRepository) Create(ctx context.Context, record *models.GenerationRecord) error {
	if record.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("creating generation record: %w", err)
	}
	return nil
}

func (r *generationRecordRepository) Finish(ctx context.Context, sessionID, state, strategy, errText string, outputLength int) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.GenerationRecord{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"state":         state,
			"strategy":      strategy,
			"error":         errText,
			"output_length": outputLength,
			"finished_at":   &now,
		})
	if res.Error != nil {
		return fmt.Errorf("finishing generation record %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("generation record %s not found: %w", sessionID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *generationRecordRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.GenerationRecord, error) {
	var record models.GenerationRecord
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("generation record %s not found: %w", sessionID, err)
		}
		return nil, fmt.Errorf("getting generation record %s: %w", sessionID, err)
	}
	return &record, nil
}

// List returns the newest records first. A non-positive limit returns all rows.
func (r *generationRecordRepository) List(ctx context.Context, limit int) ([]models.GenerationRecord, error) {
	q := r.db.WithContext(ctx).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []models.GenerationRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing generation records: %w", err)
	}
	return records, nil
}

func (r *generationRecordRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.GenerationRecord{}).Error; err != nil {
		return fmt.Errorf("clearing generation records: %w", err)
	}
	return nil
}
