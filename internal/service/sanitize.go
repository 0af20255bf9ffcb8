package service

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"service-portal/internal/model"
)

var plainText = bluemonday.StrictPolicy()

// cleanText strips markup from user supplied free text.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

func requireText(field, value string) (string, error) {
	v := cleanText(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return v, nil
}

// validateLocation expects the location's tags to have been checked.
func validateLocation(loc model.Location) (model.Location, error) {
	address, err := requireText("address", loc.Address)
	if err != nil {
		return model.Location{}, err
	}
	loc.Address = address
	loc.Landmark = cleanText(loc.Landmark)
	return loc, nil
}
