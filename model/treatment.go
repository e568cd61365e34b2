package model

import "gorm.io/gorm"

// Treatment represents an entry in the clinic's treatment catalog.
// @Description Treatment catalog entry
type Treatment struct {
	gorm.Model
	Name            string  `json:"name" gorm:"column:name;uniqueIndex;not null" example:"Limpieza dental"`
	Description     string  `json:"description" gorm:"column:description;not null" example:"Limpieza profunda con ultrasonido"`
	Price           float64 `json:"price" gorm:"column:price;not null" example:"15000"`
	DurationMinutes int     `json:"duration_minutes" gorm:"column:duration_minutes" example:"30"`
	Image           string  `json:"image" gorm:"column:image" example:"https://cdn.example.com/limpieza.jpg"`
}
