package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PropertySummary is a read-only projection of a property record
type PropertySummary struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Locality     *string   `json:"locality,omitempty" db:"locality"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Rent         int64     `json:"rent" db:"rent"`
	Deposit      *int64    `json:"deposit,omitempty" db:"deposit"`
	Bedrooms     *int      `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms    *int      `json:"bathrooms,omitempty" db:"bathrooms"`
	AreaSqft     *float64  `json:"area,omitempty" db:"area_sqft"`
	Furnishing   *string   `json:"furnishing,omitempty" db:"furnishing"`
	PropertyType string    `json:"type" db:"property_type"`
	Images       JSONArray `json:"images" db:"images"`
	Amenities    JSONArray `json:"amenities" db:"amenities"`
	IsVerified   bool      `json:"isVerified" db:"is_verified"`
	CityID       *string   `json:"cityId,omitempty" db:"city_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// JSONArray represents a JSONB array of strings
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONArray source type %T", value)
	}
}
