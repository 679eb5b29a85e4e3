package entities

import (
	"github.com/google/uuid"
)

type Receipt struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Date       string    `json:"date"`
	Currency   string    `json:"currency"`
	VendorName string    `json:"vendor_name"`
	Tax        float64   `json:"tax"`
	Total      float64   `json:"total"`
	ImageURL   string    `json:"image_url"`

	Items []ReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE" json:"items"`
	Timestamp
}

type ReceiptItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
}
