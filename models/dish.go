package models

import (
	"gorm.io/gorm"
)

// Dish prices are stored in integer cents; conversion to major units happens
// only at presentation time.
type Dish struct {
	gorm.Model
	MenuID       uint    `json:"menu_id" gorm:"not null;index"`
	CategoryID   *uint   `json:"category_id" gorm:"index"`
	Name         string  `json:"name" gorm:"not null"`
	Description  string  `json:"description"`
	PriceInCents int64   `json:"price_in_cents" gorm:"not null"`
	PictureURL   *string `json:"picture_url"`
}
