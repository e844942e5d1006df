package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// Store is the GORM-backed repository for roles, users, devices and
// sessions. Relationships are loaded explicitly by each query.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// IsDuplicate reports whether err is a uniqueness violation. The database
// must be opened with TranslateError enabled.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// create inserts a record without touching its associations.
func (s *Store) create(ctx context.Context, value any) error {
	return s.conn(ctx).Omit(clause.Associations).Create(value).Error
}
