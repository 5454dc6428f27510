package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentals/internal/model"
)

// Request field names, in reporting order.
const (
	FieldAddress     = "address"
	FieldPrice       = "price"
	FieldAmenities   = "amenities"
	FieldDescription = "description"
)

var fieldOrder = map[string]int{
	FieldAddress:     0,
	FieldPrice:       1,
	FieldAmenities:   2,
	FieldDescription: 3,
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Validate checks raw caller input against the EnhancementRequest shape and
// returns the normalized request. Text fields are trimmed; price accepts JSON
// numbers, Go numeric types and numeric strings. Any violation is reported as
// a *ValidationError naming every failing field.
func Validate(raw map[string]any) (model.EnhancementRequest, error) {
	var req model.EnhancementRequest
	var fieldErrs []FieldError

	text := func(field string, dst *string) {
		value, err := coerceText(raw[field])
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: field, Message: err.Error()})
			return
		}
		*dst = value
	}

	text(FieldAddress, &req.Address)
	text(FieldAmenities, &req.Amenities)
	text(FieldDescription, &req.Description)

	price, err := coercePrice(raw[FieldPrice])
	if err != nil {
		fieldErrs = append(fieldErrs, FieldError{Field: FieldPrice, Message: err.Error()})
	} else {
		req.Price = price
	}

	if err := requestValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return model.EnhancementRequest{}, err
		}
		for _, fe := range verrs {
			if hasField(fieldErrs, fe.Field()) {
				continue
			}
			fieldErrs = append(fieldErrs, FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
		}
	}

	if len(fieldErrs) > 0 {
		sort.SliceStable(fieldErrs, func(i, j int) bool {
			return fieldOrder[fieldErrs[i].Field] < fieldOrder[fieldErrs[j].Field]
		})
		return model.EnhancementRequest{}, &ValidationError{Fields: fieldErrs}
	}
	return req, nil
}

// RequestFields converts a typed request back into raw form so it can go
// through Validate like any other caller input.
func RequestFields(req model.EnhancementRequest) map[string]any {
	return map[string]any{
		FieldAddress:     req.Address,
		FieldPrice:       req.Price,
		FieldAmenities:   req.Amenities,
		FieldDescription: req.Description,
	}
}

func coerceText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", errors.New("is required")
	case string:
		return strings.TrimSpace(t), nil
	default:
		return "", fmt.Errorf("must be text, got %T", v)
	}
}

func coercePrice(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, errors.New("is required")
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, errors.New("must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, errors.New("must be a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("must be a finite number")
	}
	return f, nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func hasField(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
