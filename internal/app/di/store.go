package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	wishlistadapters "stockimate/internal/feature/wishlist/adapters"
	"stockimate/internal/feature/wishlist/usecase"
)

// NewKVStore creates the store backing the wishlist.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewKVStore(rdb *redis.Client, db *gorm.DB) usecase.KVStore {
	if rdb != nil {
		return wishlistadapters.NewKVRedis(rdb)
	}
	return wishlistadapters.NewKVGorm(db)
}
