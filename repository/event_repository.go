package repository

import (
	"context"
	"time"

	"mediation_flow_go/models"

	"gorm.io/gorm"
)

type gormCaseEventRepository struct {
	db *gorm.DB
}

func (r *gormCaseEventRepository) Append(ctx context.Context, e *models.CaseEvent) error {
	return translateError(r.db.WithContext(ctx).Create(e).Error)
}

func (r *gormCaseEventRepository) ListByCase(ctx context.Context, caseID string, kinds ...models.CaseEventKind) ([]models.CaseEvent, error) {
	query := r.db.WithContext(ctx).Where("case_id = ?", caseID)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}

	var events []models.CaseEvent
	err := query.
		Order("occurred_at ASC").
		Order("created_at ASC").
		Find(&events).Error
	return events, translateError(err)
}

type gormPersonDirectory struct {
	db *gorm.DB
}

func (d *gormPersonDirectory) Lookup(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := d.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func (r *gormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translateError(r.db.WithContext(ctx).Create(n).Error)
}

func (r *gormNotificationRepository) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, translateError(err)
}

func (r *gormNotificationRepository) MarkRead(ctx context.Context, id, recipientID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read_at", at)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
