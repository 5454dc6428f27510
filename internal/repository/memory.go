package repository

import (
	"context"

	"rentals/internal/model"
)

// MemoryRepository serves a fixed catalog held in memory.
type MemoryRepository struct {
	properties []model.Property
	byID       map[string]int
}

// NewMemoryRepository creates a repository over properties. The slice is
// copied; order is preserved.
func NewMemoryRepository(properties []model.Property) *MemoryRepository {
	r := &MemoryRepository{
		properties: append([]model.Property(nil), properties...),
		byID:       make(map[string]int, len(properties)),
	}
	for i, p := range r.properties {
		r.byID[p.ID] = i
	}
	return r
}

// NewSeedRepository creates a repository over the built-in sample catalog.
func NewSeedRepository() *MemoryRepository {
	return NewMemoryRepository(SeedProperties())
}

// ListProperties returns a page of properties and the catalog size.
func (r *MemoryRepository) ListProperties(_ context.Context, limit, offset int) ([]model.Property, int, error) {
	total := len(r.properties)
	if offset >= total {
		return []model.Property{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return append([]model.Property(nil), r.properties[offset:end]...), total, nil
}

// GetProperty returns the property with id or ErrNotFound.
func (r *MemoryRepository) GetProperty(_ context.Context, id string) (*model.Property, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := r.properties[i]
	return &p, nil
}

// SeedProperties returns the sample catalog.
func SeedProperties() []model.Property {
	return []model.Property{
		{
			ID:          "1",
			Title:       "Modern Downtown Loft",
			Address:     "123 Main St, Anytown, USA",
			Price:       2500,
			Bedrooms:    2,
			Bathrooms:   2,
			Sqft:        1200,
			Description: "A stylish loft in the heart of downtown with floor-to-ceiling windows and an open floor plan.",
			Amenities:   model.JSONArray{"In-unit laundry", "Gym", "Rooftop deck", "Parking"},
			ImageIDs:    model.JSONArray{"property-1-a", "property-1-b"},
			Owner:       model.Owner{Name: "Jane Doe", AvatarID: "owner-1"},
		},
		{
			ID:          "2",
			Title:       "Cozy Suburban House",
			Address:     "456 Oak Avenue, Springfield, USA",
			Price:       3200,
			Bedrooms:    3,
			Bathrooms:   2,
			Sqft:        1800,
			Description: "A charming family home on a quiet street with a fenced backyard and an updated kitchen.",
			Amenities:   model.JSONArray{"Backyard", "Garage", "Dishwasher", "Pet friendly"},
			ImageIDs:    model.JSONArray{"property-2-a"},
			Owner:       model.Owner{Name: "John Smith", AvatarID: "owner-2"},
		},
		{
			ID:          "3",
			Title:       "Lakeside Studio Apartment",
			Address:     "789 Lake Shore Dr, Lakeview, USA",
			Price:       1400,
			Bedrooms:    0,
			Bathrooms:   1,
			Sqft:        550,
			Description: "A bright studio steps from the water, ideal for a single professional who loves the outdoors.",
			Amenities:   model.JSONArray{"Lake view", "Bike storage", "Air conditioning"},
			ImageIDs:    model.JSONArray{"property-3-a", "property-3-b", "property-3-c"},
			Owner:       model.Owner{Name: "Maria Garcia", AvatarID: "owner-3"},
		},
		{
			ID:          "4",
			Title:       "Historic Brownstone Flat",
			Address:     "22 Elm Street, Old Town, USA",
			Price:       2100,
			Bedrooms:    1,
			Bathrooms:   1,
			Sqft:        900,
			Description: "Original hardwood floors, exposed brick and high ceilings in a restored nineteenth century brownstone.",
			Amenities:   model.JSONArray{"Hardwood floors", "Fireplace", "Storage"},
			ImageIDs:    model.JSONArray{"property-4-a"},
			Owner:       model.Owner{Name: "Sam Lee", AvatarID: "owner-4"},
		},
	}
}
