package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

// CityDetailInput carries city detail create/update fields.
type CityDetailInput struct {
	UserID          string
	CityID          *string
	PredefinedTitle *string
	Subtitle        *domain.LocalizedText
	Body            *domain.LocalizedText
	ImageURLs       []string
}

// CityDetailService handles the content blocks shown on a city page.
type CityDetailService struct {
	details   ports.CityDetailRepository
	publisher ports.EventPublisher
}

// NewCityDetailService creates a new CityDetailService.
func NewCityDetailService(details ports.CityDetailRepository, publisher ports.EventPublisher) *CityDetailService {
	return &CityDetailService{details: details, publisher: publisher}
}

// Create validates and stores a new city detail.
func (s *CityDetailService) Create(ctx context.Context, in CityDetailInput) (_ *domain.CityDetail, err error) {
	ctx, span := tracer.Start(ctx, "CityDetailService.Create")
	defer func() { finishSpan(span, err) }()

	if in.CityID == nil || strings.TrimSpace(*in.CityID) == "" {
		return nil, ErrCityRequired
	}
	if in.PredefinedTitle == nil || strings.TrimSpace(*in.PredefinedTitle) == "" {
		return nil, ErrTitleRequired
	}

	detail := &domain.CityDetail{
		UserID:          in.UserID,
		CityID:          *in.CityID,
		PredefinedTitle: strings.TrimSpace(*in.PredefinedTitle),
		ImageURLs:       in.ImageURLs,
	}
	mergeText(&detail.Subtitle, in.Subtitle)
	mergeText(&detail.Body, in.Body)
	if detail.ImageURLs == nil {
		detail.ImageURLs = []string{}
	}

	if err := s.details.Create(ctx, detail); err != nil {
		return nil, fmt.Errorf("create city detail: %w", err)
	}

	publish(ctx, s.publisher, domain.KindCityDetail, domain.ActionCreated, detail.ID, detail.CityID)
	return detail, nil
}

// Update applies the set fields of in to the detail.
func (s *CityDetailService) Update(ctx context.Context, id string, in CityDetailInput) (_ *domain.CityDetail, err error) {
	ctx, span := tracer.Start(ctx, "CityDetailService.Update")
	defer func() { finishSpan(span, err) }()

	detail, err := s.details.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.CityID != nil {
		if strings.TrimSpace(*in.CityID) == "" {
			return nil, ErrCityRequired
		}
		detail.CityID = *in.CityID
		changed = true
	}
	if in.PredefinedTitle != nil {
		if strings.TrimSpace(*in.PredefinedTitle) == "" {
			return nil, ErrTitleRequired
		}
		detail.PredefinedTitle = strings.TrimSpace(*in.PredefinedTitle)
		changed = true
	}
	if mergeText(&detail.Subtitle, in.Subtitle) {
		changed = true
	}
	if mergeText(&detail.Body, in.Body) {
		changed = true
	}
	if in.ImageURLs != nil {
		detail.ImageURLs = in.ImageURLs
		changed = true
	}
	if !changed {
		return nil, ErrNoChanges
	}

	if err := s.details.Update(ctx, detail); err != nil {
		return nil, fmt.Errorf("update city detail: %w", err)
	}

	publish(ctx, s.publisher, domain.KindCityDetail, domain.ActionUpdated, detail.ID, detail.CityID)
	return detail, nil
}

// Delete removes a city detail.
func (s *CityDetailService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "CityDetailService.Delete")
	defer func() { finishSpan(span, err) }()

	detail, err := s.details.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.details.Delete(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.publisher, domain.KindCityDetail, domain.ActionDeleted, id, detail.CityID)
	return nil
}

// List returns the details of a city, or all details when CityID is empty.
func (s *CityDetailService) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.CityDetail], error) {
	filter.Limit = clampListLimit(filter.Limit)
	return s.details.List(ctx, filter)
}
