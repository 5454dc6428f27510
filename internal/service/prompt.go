package service

import (
	"strconv"
	"strings"

	"rentals/internal/model"
)

const enhancePromptTemplate = `You are an expert real estate copywriter.

Given the following details about a property, enhance the description to be more engaging and attractive to potential renters. Focus on highlighting the best features and creating a sense of desire.

Address: {{address}}
Price: {{price}}
Amenities: {{amenities}}
Original Description: {{description}}

Enhanced Description:`

// BuildPrompt renders the copywriting instruction for req. Values are
// substituted literally; the same request always yields the same prompt.
func BuildPrompt(req model.EnhancementRequest) string {
	// A single pass keeps values containing "{{...}}" from being expanded.
	r := strings.NewReplacer(
		"{{address}}", req.Address,
		"{{price}}", FormatPrice(req.Price),
		"{{amenities}}", req.Amenities,
		"{{description}}", req.Description,
	)
	return r.Replace(enhancePromptTemplate)
}

// FormatPrice renders a price in its shortest decimal form, e.g. 1500 or 1499.5.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
