package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is an imported expense row awaiting (or carrying) categorization.
// Merchant fields are probed in priority order when the expense is used as a
// match candidate: merchant name, normalized merchant, then description.
type Expense struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	MerchantName       string          `gorm:"type:varchar(255);index" json:"merchant_name,omitempty"`
	NormalizedMerchant string          `gorm:"type:varchar(255);index" json:"normalized_merchant,omitempty"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category           string          `gorm:"type:varchar(50)" json:"category,omitempty"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	OccurredAt         time.Time       `gorm:"not null;index" json:"occurred_at"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return nil
}
