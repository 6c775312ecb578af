package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm connection or transaction
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Cases() CaseRepository {
	return &gormCaseRepository{db: s.db}
}

func (s *GormStore) Sessions() SessionRepository {
	return &gormSessionRepository{db: s.db}
}

func (s *GormStore) Events() CaseEventRepository {
	return &gormCaseEventRepository{db: s.db}
}

func (s *GormStore) Persons() PersonDirectory {
	return &gormPersonDirectory{db: s.db}
}

func (s *GormStore) Notifications() NotificationRepository {
	return &gormNotificationRepository{db: s.db}
}

// WithinTx runs fn inside a database transaction (a savepoint when already in one)
func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// translateError maps driver and gorm errors onto the repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// affected turns a zero-row write into ErrNotFound
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
