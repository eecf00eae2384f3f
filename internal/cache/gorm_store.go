package cache

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expense-match/internal/models"
)

// DatabaseStore persists cache entries through gorm so multiple API instances
// can share warm results. Expired rows are deleted lazily on read and in bulk
// via PurgeExpired.
type DatabaseStore struct {
	db *gorm.DB
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Get(key string) ([]byte, bool, error) {
	var entry models.MatchCacheEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	if entry.Expired() {
		s.db.Where("key = ?", key).Delete(&models.MatchCacheEntry{})
		return nil, false, nil
	}

	return []byte(entry.Payload), true, nil
}

func (s *DatabaseStore) Set(key string, value []byte, ttl time.Duration) error {
	entry := models.MatchCacheEntry{
		Key:       key,
		Payload:   string(value),
		ExpiresAt: time.Now().Add(ttl),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

func (s *DatabaseStore) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&models.MatchCacheEntry{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// PurgeExpired removes every entry past its deadline and reports how many
// rows were deleted. Intended for a periodic maintenance ticker.
func (s *DatabaseStore) PurgeExpired() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(&models.MatchCacheEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, result.Error)
	}
	return result.RowsAffected, nil
}
