package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CanonicalMerchant is a deduplicated, authoritative merchant record that raw
// merchant strings are matched and aliased against
type CanonicalMerchant struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	UsageCount  int64     `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for CanonicalMerchant
func (m *CanonicalMerchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Label returns the name shown to users, preferring the display name
func (m *CanonicalMerchant) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// MerchantAlias maps a raw merchant string variant to its canonical merchant
type MerchantAlias struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MerchantID     uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	RawName        string    `gorm:"type:varchar(255);not null;index" json:"raw_name"`
	NormalizedName string    `gorm:"type:varchar(255);index" json:"normalized_name,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`

	// Associations
	Merchant CanonicalMerchant `gorm:"foreignKey:MerchantID" json:"-"`
}

// BeforeCreate hook for MerchantAlias
func (a *MerchantAlias) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
