package repository

import (
	"context"
	"time"

	"mediation_flow_go/models"

	"gorm.io/gorm"
)

// CaseFilterColumns lists the case columns that may appear in a search filter
var CaseFilterColumns = map[string]bool{
	"case_number":        true,
	"title":              true,
	"case_type":          true,
	"status":             true,
	"priority":           true,
	"confidentiality":    true,
	"plaintiff_id":       true,
	"defendant_id":       true,
	"mediator_id":        true,
	"filing_date":        true,
	"settlement_date":    true,
	"settlement_amount":  true,
	"follow_up_required": true,
	"follow_up_date":     true,
	"created_by":         true,
}

type gormCaseRepository struct {
	db *gorm.DB
}

func (r *gormCaseRepository) Create(ctx context.Context, c *models.Case) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *gormCaseRepository) FindByID(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *gormCaseRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).Model(&models.Case{}).Where("id = ?", id).Updates(fields))
}

func (r *gormCaseRepository) PrependNotes(ctx context.Context, id, line string) error {
	return affected(r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ?", id).
		Update("notes", prependExpr(line)))
}

func (r *gormCaseRepository) LatestCaseNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Case{}).
		Where(`case_number LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		// Longer numbers first so sequences past 9999 still sort above shorter ones
		Order("LENGTH(case_number) DESC").
		Order("case_number DESC").
		Limit(1).
		Pluck("case_number", &numbers).Error
	if err != nil {
		return "", translateError(err)
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (r *gormCaseRepository) AssignMediatorWithinCapacity(ctx context.Context, caseID, mediatorID string, capacity int) (bool, error) {
	activeCount := r.db.Model(&models.Case{}).
		Select("COUNT(*)").
		Where("mediator_id = ? AND status IN ? AND id <> ?", mediatorID, models.ActiveCaseStatuses, caseID)

	res := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ?", caseID).
		Where("(?) < ?", activeCount, capacity).
		Updates(map[string]interface{}{
			"mediator_id": mediatorID,
			"status":      models.CaseStatusAssigned,
		})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormCaseRepository) CountActiveByMediator(ctx context.Context, mediatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("mediator_id = ? AND status IN ?", mediatorID, models.ActiveCaseStatuses).
		Count(&count).Error
	return count, translateError(err)
}

func (r *gormCaseRepository) CountByStatusForMediator(ctx context.Context, mediatorID string) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("mediator_id = ?", mediatorID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	return counts, translateError(err)
}

func (r *gormCaseRepository) ListByMediator(ctx context.Context, mediatorID string) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.WithContext(ctx).
		Where("mediator_id = ?", mediatorID).
		Order("filing_date ASC").
		Find(&cases).Error
	return cases, translateError(err)
}

func (r *gormCaseRepository) ListByParties(ctx context.Context, partyIDs []string, excludeCaseID string) ([]models.Case, error) {
	var cases []models.Case
	if len(partyIDs) == 0 {
		return cases, nil
	}
	err := r.db.WithContext(ctx).
		Where("(plaintiff_id IN ? OR defendant_id IN ?) AND id <> ?", partyIDs, partyIDs, excludeCaseID).
		Order("filing_date DESC").
		Find(&cases).Error
	return cases, translateError(err)
}

func (r *gormCaseRepository) ListFollowUpsDue(ctx context.Context, before time.Time) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.WithContext(ctx).
		Where("follow_up_required = ? AND follow_up_date IS NOT NULL AND follow_up_date <= ?", true, before).
		Where("follow_up_notified_at IS NULL").
		Order("follow_up_date ASC").
		Find(&cases).Error
	return cases, translateError(err)
}

func (r *gormCaseRepository) Search(ctx context.Context, filters []Filter, page Page) (*PageResult[models.Case], error) {
	page = page.Normalize()

	query, err := ApplyFilters(r.db.WithContext(ctx).Model(&models.Case{}), CaseFilterColumns, filters...)
	if err != nil {
		return nil, err
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, translateError(err)
	}

	var cases []models.Case
	if err := query.
		Order("filing_date DESC").
		Order("case_number DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&cases).Error; err != nil {
		return nil, translateError(err)
	}

	return NewPageResult(cases, total, page), nil
}

func (r *gormCaseRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	if err := affected(r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ?", id).
		Update("deleted_by", actorID)); err != nil {
		return err
	}
	return affected(r.db.WithContext(ctx).Delete(&models.Case{}, "id = ?", id))
}

// prependExpr puts line above the existing text, separated by a newline
func prependExpr(line string) interface{} {
	return gorm.Expr("CASE WHEN COALESCE(notes, '') = '' THEN ? ELSE ? || notes END", line, line+"\n")
}
