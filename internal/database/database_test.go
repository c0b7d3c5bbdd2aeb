package database

import (
	"path/filepath"
	"sync"
	"testing"

	"campus-complaints/internal/config"
	"campus-complaints/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestInit_MissingDSN(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		_, err := Init(config.DatabaseConfig{Driver: driver})
		assert.Error(t, err, driver)
	}
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := setupTestDB(t)
	for _, m := range []any{&models.User{}, &models.Complaint{}, &models.Session{}, &models.Sequence{}, &models.AuditLog{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestNextSequence_Monotonic(t *testing.T) {
	db := setupTestDB(t)

	for want := uint(1); want <= 3; want++ {
		var got uint
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			got, err = NextSequence(tx, ComplaintSequence)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// independent counters
	var other uint
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		other, err = NextSequence(tx, "other")
		return err
	}))
	assert.Equal(t, uint(1), other)
}

func TestNextSequence_RolledBackValueIsReused(t *testing.T) {
	db := setupTestDB(t)

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, _ = NextSequence(tx, ComplaintSequence)
		return assert.AnError
	})

	var got uint
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		got, err = NextSequence(tx, ComplaintSequence)
		return err
	}))
	assert.Equal(t, uint(1), got)
}

func TestNextSequence_ConcurrentCallersGetDistinctValues(t *testing.T) {
	db := setupTestDB(t)

	const workers = 8
	var (
		mu   sync.Mutex
		seen = make(map[uint]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n uint
			err := db.Transaction(func(tx *gorm.DB) error {
				var err error
				n, err = NextSequence(tx, ComplaintSequence)
				return err
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers)
	for i := uint(1); i <= workers; i++ {
		assert.True(t, seen[i], "missing value %d", i)
	}
}
