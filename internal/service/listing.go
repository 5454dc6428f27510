package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"rentals/internal/model"
	"rentals/internal/utils"
)

// MessageSubmitted is returned with an accepted listing draft.
const MessageSubmitted = "Your property is now ready for review."

// ListingStore is the read side of the property catalog.
type ListingStore interface {
	ListProperties(ctx context.Context, limit, offset int) ([]model.Property, int, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
}

// ListingService serves the catalog and normalizes new listing drafts.
type ListingService struct {
	store ListingStore
}

// NewListingService creates a listing service
func NewListingService(store ListingStore) *ListingService {
	return &ListingService{store: store}
}

// List returns a page of the catalog.
func (s *ListingService) List(ctx context.Context, limit, offset int) (*model.ListingsResponse, error) {
	properties, total, err := s.store.ListProperties(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if properties == nil {
		properties = []model.Property{}
	}
	return &model.ListingsResponse{Results: properties, Total: total}, nil
}

// Get returns one property.
func (s *ListingService) Get(ctx context.Context, id string) (*model.Property, error) {
	return s.store.GetProperty(ctx, id)
}

// Submit turns an already validated draft into a Property ready for review.
// The property is assigned a fresh id and is not persisted.
func (s *ListingService) Submit(draft model.ListingDraft) model.ListingSubmission {
	bedrooms := 0
	if draft.Bedrooms != nil {
		bedrooms = *draft.Bedrooms
	}
	imageIDs := model.JSONArray{}
	for _, id := range draft.ImageIDs {
		if id = strings.TrimSpace(id); id != "" {
			imageIDs = append(imageIDs, id)
		}
	}

	return model.ListingSubmission{
		Property: model.Property{
			ID:          uuid.NewString(),
			Title:       strings.TrimSpace(draft.Title),
			Address:     strings.TrimSpace(draft.Address),
			Price:       draft.Price,
			Bedrooms:    bedrooms,
			Bathrooms:   draft.Bathrooms,
			Sqft:        draft.Sqft,
			Description: strings.TrimSpace(draft.Description),
			Amenities:   model.JSONArray(utils.SplitAmenities(draft.Amenities)),
			ImageIDs:    imageIDs,
		},
		Message: MessageSubmitted,
	}
}
