package di

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestNewKVStore はRedisの有無でストア実装が切り替わることを検証します。
func TestNewKVStore(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	withRedis := NewKVStore(rdb, db)
	withoutRedis := NewKVStore(nil, db)

	assert.Contains(t, typeName(withRedis), "kvRedis")
	assert.Contains(t, typeName(withoutRedis), "kvGorm")
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
