package usecases

import (
	"errors"

	"github.com/yangonmaps/citymap/internal/core/domain"
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrUnknownCity       = domain.ErrUnknownCity
	ErrNameRequired      = errors.New("at least one of name_mm or name_en is required")
	ErrInvalidGeometry   = errors.New("valid geometry is required")
	ErrTooFewCoordinates = errors.New("at least 2 coordinates are required")
	ErrCityRequired      = errors.New("city_id is required")
	ErrTitleRequired     = errors.New("predefined_title is required")
	ErrNoChanges         = errors.New("no valid fields provided")
	ErrNoRoute           = errors.New("no valid route found between the points")
	ErrInvalidPoint      = errors.New("start and end must be valid lon/lat coordinates")
)

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrNameRequired, ErrInvalidGeometry, ErrTooFewCoordinates,
		ErrCityRequired, ErrTitleRequired, ErrNoChanges, ErrUnknownCity,
		ErrInvalidPoint,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
