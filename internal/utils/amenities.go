package utils

import (
	"strings"
)

// amenityAliases maps common shorthand to the catalog's canonical names.
var amenityAliases = map[string]string{
	"pool":             "Swimming pool",
	"swimming pool":    "Swimming pool",
	"gym":              "Gym",
	"fitness":          "Gym",
	"fitness center":   "Gym",
	"aircon":           "Air conditioning",
	"air conditioner":  "Air conditioning",
	"a/c":              "Air conditioning",
	"ac":               "Air conditioning",
	"washer":           "In-unit laundry",
	"washing machine":  "In-unit laundry",
	"washer/dryer":     "In-unit laundry",
	"laundry":          "In-unit laundry",
	"in-unit laundry":  "In-unit laundry",
	"parking":          "Parking",
	"car park":         "Parking",
	"garage":           "Parking",
	"pets":             "Pet friendly",
	"pet friendly":     "Pet friendly",
	"pet-friendly":     "Pet friendly",
	"dishwasher":       "Dishwasher",
	"balcony":          "Balcony",
	"terrace":          "Balcony",
	"fridge":           "Refrigerator",
	"refrigerator":     "Refrigerator",
	"elevator":         "Elevator",
	"lift":             "Elevator",
	"wifi":             "Wi-Fi",
	"wi-fi":            "Wi-Fi",
	"doorman":          "Doorman",
	"24hr security":    "24-hour security",
	"24-hour security": "24-hour security",
}

// NormalizeAmenity maps an amenity to its canonical name. Unknown amenities
// are returned trimmed with their original casing.
func NormalizeAmenity(amenity string) string {
	trimmed := strings.Join(strings.Fields(amenity), " ")
	if normalized, ok := amenityAliases[strings.ToLower(trimmed)]; ok {
		return normalized
	}
	return trimmed
}

// SplitAmenities turns a comma-separated amenity list into normalized,
// case-insensitively de-duplicated entries in input order.
func SplitAmenities(list string) []string {
	parts := strings.Split(list, ",")
	result := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		amenity := NormalizeAmenity(part)
		if amenity == "" {
			continue
		}
		key := strings.ToLower(amenity)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, amenity)
	}

	return result
}
