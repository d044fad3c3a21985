package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockimate/internal/feature/wishlist/usecase"
)

// kvGorm は usecase.KVStore のSQL実装です（MySQL/PostgreSQL/SQLite）。
type kvGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure kvGorm implements KVStore.
var _ usecase.KVStore = (*kvGorm)(nil)

// NewKVGorm creates a new instance of kvGorm.
func NewKVGorm(db *gorm.DB) *kvGorm {
	return &kvGorm{db: db}
}

// Get returns nil, nil for a missing key.
func (r *kvGorm) Get(ctx context.Context, key string) ([]byte, error) {
	var model KVModel
	if err := r.db.WithContext(ctx).Where("kv_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.Value, nil
}

// Set upserts the value stored at key.
func (r *kvGorm) Set(ctx context.Context, key string, value []byte) error {
	model := KVModel{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kv_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&model).Error
}
