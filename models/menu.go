package models

import (
	"gorm.io/gorm"
)

// Menu is a restaurant's public menu page, reachable by slug from the table
// QR code. Publication gates public visibility.
type Menu struct {
	gorm.Model
	Name          string     `json:"name" gorm:"not null"`
	Slug          string     `json:"slug" gorm:"uniqueIndex;not null"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	ContactNumber string     `json:"contact_number"`
	IsPublished   bool       `json:"is_published" gorm:"not null;default:false"`
	UserID        uint       `json:"user_id" gorm:"not null;index"`
	Categories    []Category `json:"categories,omitempty" gorm:"foreignKey:MenuID"`
	Dishes        []Dish     `json:"dishes,omitempty" gorm:"foreignKey:MenuID"`
}

type Category struct {
	gorm.Model
	MenuID    uint   `json:"menu_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null"`
	SortOrder int    `json:"sort_order" gorm:"index"`
}
