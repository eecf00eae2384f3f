package database

import (
	"fmt"
	"log"
	"time"

	"expense-match/internal/config"
	"expense-match/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Category{},
		&models.CategoryPattern{},
		&models.CanonicalMerchant{},
		&models.MerchantAlias{},
		&models.Expense{},
		&models.MatchCacheEntry{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_categories_name ON categories(name)",
		// Pattern indexes: the matcher loads active patterns ordered by weight
		"CREATE INDEX IF NOT EXISTS idx_category_patterns_category_id ON category_patterns(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_category_patterns_pattern_type ON category_patterns(pattern_type)",
		"CREATE INDEX IF NOT EXISTS idx_category_patterns_active ON category_patterns(active) WHERE active = true",
		"CREATE INDEX IF NOT EXISTS idx_category_patterns_confidence_weight ON category_patterns(confidence_weight)",
		"CREATE INDEX IF NOT EXISTS idx_category_patterns_usage_count ON category_patterns(usage_count)",
		// Merchant indexes
		"CREATE INDEX IF NOT EXISTS idx_canonical_merchants_name ON canonical_merchants(name)",
		"CREATE INDEX IF NOT EXISTS idx_canonical_merchants_usage_count ON canonical_merchants(usage_count)",
		"CREATE INDEX IF NOT EXISTS idx_merchant_aliases_merchant_id ON merchant_aliases(merchant_id)",
		"CREATE INDEX IF NOT EXISTS idx_merchant_aliases_normalized_name ON merchant_aliases(normalized_name)",
		// Expense indexes
		"CREATE INDEX IF NOT EXISTS idx_expenses_category_id ON expenses(category_id)",
		"CREATE INDEX IF NOT EXISTS idx_expenses_uncategorized ON expenses(occurred_at) WHERE category_id IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_expenses_normalized_merchant ON expenses(normalized_merchant)",
		"CREATE INDEX IF NOT EXISTS idx_expenses_occurred_at ON expenses(occurred_at)",
		// Cache indexes
		"CREATE INDEX IF NOT EXISTS idx_match_cache_entries_expires_at ON match_cache_entries(expires_at)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

func (db *DB) CleanupExpiredCacheEntries() error {
	now := time.Now()

	if err := db.DB.Where("expires_at < ?", now).Delete(&models.MatchCacheEntry{}).Error; err != nil {
		return fmt.Errorf("failed to cleanup expired cache entries: %w", err)
	}

	return nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Get the underlying sql.DB for migration runner
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Run SQL-based migrations using golang-migrate if enabled
	if err := RunMigrationsIfEnabled(sqlDB); err != nil {
		log.Printf("Warning: migration runner failed: %v", err)
		log.Println("Falling back to GORM AutoMigrate...")

		// Fallback to GORM AutoMigrate
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	log.Println("Database initialized successfully")

	return db, nil
}
