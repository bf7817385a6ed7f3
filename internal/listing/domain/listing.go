package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Listing catalog listing as read by the chat service
type Listing struct {
	ID        string     `gorm:"primaryKey;column:id" json:"id"`
	SellerID  string     `gorm:"column:seller_id;index" json:"seller_id"`
	Title     string     `gorm:"column:title" json:"title"`
	Images    StringList `gorm:"column:images;type:jsonb" json:"images"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// TableName catalog table
func (Listing) TableName() string {
	return "listings"
}

// StringList jsonb array column
type StringList []string

// Value driver.Valuer
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan sql.Scanner
func (s *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: unsupported type %T", src)
	}
	return json.Unmarshal(raw, (*[]string)(s))
}
