package adapters

import "time"

// KVModel is the GORM model for the kv_entries table.
type KVModel struct {
	Key       string `gorm:"column:kv_key;primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (KVModel) TableName() string {
	return "kv_entries"
}
