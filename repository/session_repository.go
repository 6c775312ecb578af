package repository

import (
	"context"

	"mediation_flow_go/models"

	"gorm.io/gorm"
)

type gormSessionRepository struct {
	db *gorm.DB
}

func (r *gormSessionRepository) Create(ctx context.Context, s *models.MediationSession) error {
	return translateError(r.db.WithContext(ctx).Create(s).Error)
}

func (r *gormSessionRepository) FindByID(ctx context.Context, id string) (*models.MediationSession, error) {
	var s models.MediationSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &s, nil
}

func (r *gormSessionRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).Model(&models.MediationSession{}).Where("id = ?", id).Updates(fields))
}

func (r *gormSessionRepository) PrependNotes(ctx context.Context, id, line string) error {
	return affected(r.db.WithContext(ctx).Model(&models.MediationSession{}).
		Where("id = ?", id).
		Update("notes", prependExpr(line)))
}

func (r *gormSessionRepository) ListByCase(ctx context.Context, caseID, sessionType string) ([]models.MediationSession, error) {
	query := r.db.WithContext(ctx).Where("case_id = ?", caseID)
	if sessionType != "" {
		query = query.Where("session_type = ?", sessionType)
	}

	var sessions []models.MediationSession
	err := query.
		Order("session_date ASC").
		Order("session_time ASC").
		Order("created_at ASC").
		Find(&sessions).Error
	return sessions, translateError(err)
}

func (r *gormSessionRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	if err := affected(r.db.WithContext(ctx).Model(&models.MediationSession{}).
		Where("id = ?", id).
		Update("deleted_by", actorID)); err != nil {
		return err
	}
	return affected(r.db.WithContext(ctx).Delete(&models.MediationSession{}, "id = ?", id))
}
