package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Standard expense categories based on industry conventions
const (
	CategoryGroceries      = "GROCERIES"
	CategoryDining         = "DINING"
	CategoryTransportation = "TRANSPORTATION"
	CategoryEntertainment  = "ENTERTAINMENT"
	CategoryShopping       = "SHOPPING"
	CategoryBillsUtilities = "BILLS_UTILITIES"
	CategoryHealthcare     = "HEALTHCARE"
	CategoryEducation      = "EDUCATION"
	CategoryTravel         = "TRAVEL"
	CategoryATMCash        = "ATM_CASH"
	CategoryIncome         = "INCOME"
	CategoryFees           = "FEES"
	CategoryOther          = "OTHER"
)

// AllCategoryNames returns all valid category name constants
func AllCategoryNames() []string {
	return []string{
		CategoryGroceries,
		CategoryDining,
		CategoryTransportation,
		CategoryEntertainment,
		CategoryShopping,
		CategoryBillsUtilities,
		CategoryHealthcare,
		CategoryEducation,
		CategoryTravel,
		CategoryATMCash,
		CategoryIncome,
		CategoryFees,
		CategoryOther,
	}
}

// IsValidCategoryName checks if a category name string is valid
func IsValidCategoryName(name string) bool {
	for _, valid := range AllCategoryNames() {
		if name == valid {
			return true
		}
	}
	return false
}

// Category is a persistent expense category that patterns point at
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
