package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Property represents a rental listing in the catalog
type Property struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Address     string    `json:"address" db:"address"`
	Price       float64   `json:"price" db:"price"` // monthly rent
	Bedrooms    int       `json:"bedrooms" db:"bedrooms"`
	Bathrooms   int       `json:"bathrooms" db:"bathrooms"`
	Sqft        int       `json:"sqft" db:"sqft"`
	Description string    `json:"description" db:"description"`
	Amenities   JSONArray `json:"amenities" db:"amenities"`
	ImageIDs    JSONArray `json:"imageIds" db:"image_ids"`
	Owner       Owner     `json:"owner"`
}

// Owner is the person listing a property
type Owner struct {
	Name     string `json:"name" db:"owner_name"`
	AvatarID string `json:"avatarId" db:"owner_avatar_id"`
}

// ListingDraft is the create-listing form submission
type ListingDraft struct {
	Title       string   `json:"title" binding:"required,min=5"`
	Address     string   `json:"address" binding:"required,min=10"`
	Price       float64  `json:"price" binding:"required,gte=1"`
	Bedrooms    *int     `json:"bedrooms" binding:"required,gte=0"`
	Bathrooms   int      `json:"bathrooms" binding:"required,gte=1"`
	Sqft        int      `json:"sqft" binding:"required,gte=1"`
	Amenities   string   `json:"amenities" binding:"required,min=3"`
	Description string   `json:"description" binding:"required,min=20"`
	ImageIDs    []string `json:"imageIds,omitempty"`
}

// ListingSubmission is returned for an accepted draft
type ListingSubmission struct {
	Property Property `json:"property"`
	Message  string   `json:"message"`
}

// ListingsResponse wraps the catalog listing
type ListingsResponse struct {
	Results []Property `json:"results"`
	Total   int        `json:"total"`
}

// JSONArray represents a JSON array field
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
		return fmt.Errorf("unsupported JSONArray source %T", value)
	}
}
