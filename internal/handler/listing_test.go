package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentals/internal/model"
	"rentals/internal/repository"
	"rentals/internal/service"
)

func TestListListings(t *testing.T) {
	router := newTestRouter(t, &stubEnhancer{})

	w := do(router, http.MethodGet, "/api/v1/listings?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ListingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(repository.SeedProperties()), resp.Total)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "2", resp.Results[0].ID)

	w = do(router, http.MethodGet, "/api/v1/listings?limit=abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, len(repository.SeedProperties()))
}

func TestGetListing(t *testing.T) {
	router := newTestRouter(t, &stubEnhancer{})

	w := do(router, http.MethodGet, "/api/v1/listings/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p model.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Modern Downtown Loft", p.Title)
	assert.Equal(t, "Jane Doe", p.Owner.Name)

	w = do(router, http.MethodGet, "/api/v1/listings/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Listing not found"}`, w.Body.String())
}

type failingStore struct{ err error }

func (f failingStore) ListProperties(context.Context, int, int) ([]model.Property, int, error) {
	return nil, 0, f.err
}

func (f failingStore) GetProperty(context.Context, string) (*model.Property, error) {
	return nil, f.err
}

func TestListing_StoreFailure(t *testing.T) {
	var logs bytes.Buffer
	h := NewListingHandler(service.NewListingService(failingStore{err: errors.New("connection refused")}), 20, 100, zerolog.New(&logs))

	router := gin.New()
	router.Use(RequestID())
	router.GET("/api/v1/listings", h.List)
	router.GET("/api/v1/listings/:id", h.Get)

	tests := []struct {
		name      string
		path      string
		requestID string
		want      string
		message   string
	}{
		{"List", "/api/v1/listings", "0b7c8a7e-4f0e-4c55-9d3a-1f2b3c4d5e6f", `{"error": "Failed to list properties"}`, "list properties failed"},
		{"Get", "/api/v1/listings/7", "6a1d2e3f-8b9c-4d0e-a1b2-c3d4e5f60718", `{"error": "Failed to get listing"}`, "get property failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs.Reset()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(RequestIDHeader, tt.requestID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
			assert.Contains(t, logs.String(), tt.message)
			assert.Contains(t, logs.String(), `"request_id":"`+tt.requestID+`"`)
			assert.Contains(t, logs.String(), "connection refused")
		})
	}
}

func validDraft() map[string]any {
	return map[string]any{
		"title":       "Sunny Corner Flat",
		"address":     "12 Baker Street, London",
		"price":       1800,
		"bedrooms":    0,
		"bathrooms":   1,
		"sqft":        650,
		"amenities":   "Gym, parking, gym",
		"description": "A bright flat on a quiet corner with lots of light.",
	}
}

func TestSubmitListing(t *testing.T) {
	router := newTestRouter(t, &stubEnhancer{})

	w := do(router, http.MethodPost, "/api/v1/listings", validDraft())
	require.Equal(t, http.StatusAccepted, w.Code)

	var sub model.ListingSubmission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sub))
	assert.Equal(t, service.MessageSubmitted, sub.Message)
	assert.NotEmpty(t, sub.Property.ID)
	assert.Equal(t, model.JSONArray{"Gym", "Parking"}, sub.Property.Amenities)
}

func TestSubmitListing_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{name: "short title", mutate: func(m map[string]any) { m["title"] = "Flat" }, field: "title"},
		{name: "short address", mutate: func(m map[string]any) { m["address"] = "12 Baker" }, field: "address"},
		{name: "zero price", mutate: func(m map[string]any) { m["price"] = 0 }, field: "price"},
		{name: "missing bedrooms", mutate: func(m map[string]any) { delete(m, "bedrooms") }, field: "bedrooms"},
		{name: "negative bedrooms", mutate: func(m map[string]any) { m["bedrooms"] = -1 }, field: "bedrooms"},
		{name: "no bathrooms", mutate: func(m map[string]any) { m["bathrooms"] = 0 }, field: "bathrooms"},
		{name: "no sqft", mutate: func(m map[string]any) { m["sqft"] = 0 }, field: "sqft"},
		{name: "short amenities", mutate: func(m map[string]any) { m["amenities"] = "ok" }, field: "amenities"},
		{name: "short description", mutate: func(m map[string]any) { m["description"] = "Too short." }, field: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &stubEnhancer{})
			draft := validDraft()
			tt.mutate(draft)

			w := do(router, http.MethodPost, "/api/v1/listings", draft)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var body struct {
				Error  string               `json:"error"`
				Fields []service.FieldError `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Invalid listing", body.Error)
			require.Len(t, body.Fields, 1)
			assert.Equal(t, tt.field, body.Fields[0].Field)
		})
	}
}

func TestSubmitListing_MalformedBody(t *testing.T) {
	router := newTestRouter(t, &stubEnhancer{})

	w := do(router, http.MethodPost, "/api/v1/listings", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"body"`)
}
