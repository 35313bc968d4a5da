// Package service implements the apartment listing use cases: listing with
// search and pagination, lookup by id, and validated creation with
// duplicate unit number detection.
package service

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"

	"github.com/helixir/apartment-listing-service/internal/domain"
	"github.com/helixir/apartment-listing-service/internal/observability"
	"github.com/helixir/apartment-listing-service/internal/repository"
)

// Client-facing messages. Handlers and clients match on these strings.
const (
	MsgApartmentNotFound = "Apartment not found"
	MsgDuplicateUnit     = "Apartment with this unit number already exists in this project"
)

// fieldMessages maps a CreateApartmentInput JSON field to the message
// reported when its rule fails.
var fieldMessages = map[string]string{
	"unitName":     "Unit name is required",
	"unitNumber":   "Unit number is required",
	"projectName":  "Project name is required",
	"unitLocation": "Unit location is required",
	"price":        "Price must be greater than 0",
	"area":         "Area must be greater than 0",
	"bathrooms":    "Bathrooms must be 0 or greater",
	"bedrooms":     "Bedrooms must be 0 or greater",
	"floorNumber":  "Floor number is required",
}

// MetricsRecorder receives service-level counters. *observability.Metrics implements it.
type MetricsRecorder interface {
	RecordApartmentCreated()
	RecordValidationFailure(field string)
	RecordDuplicateRejected()
}

var _ MetricsRecorder = (*observability.Metrics)(nil)

// ListQuery carries the optional listing parameters as received from the caller.
type ListQuery struct {
	Limit  *int
	Offset *int
	Search *string
}

// ApartmentService orchestrates validation and repository access.
type ApartmentService struct {
	repo     repository.ApartmentRepository
	logger   zerolog.Logger
	metrics  MetricsRecorder
	validate *validator.Validate
}

// NewApartmentService creates the service. metrics may be nil.
func NewApartmentService(repo repository.ApartmentRepository, logger zerolog.Logger, metrics MetricsRecorder) *ApartmentService {
	return &ApartmentService{
		repo:     repo,
		logger:   logger.With().Str("component", "apartment_service").Logger(),
		metrics:  metrics,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report JSON names so failures map straight onto fieldMessages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ListApartments returns a page of listings with pagination metadata.
//
// The search term is trimmed once and the same term filters both the page and
// the total. Limit and Offset are echoed as given, zero included; negative
// values are treated as absent.
func (s *ApartmentService) ListApartments(ctx context.Context, q ListQuery) (*domain.ApartmentList, error) {
	params := repository.ListParams{
		Limit:  nonNegative(q.Limit),
		Offset: nonNegative(q.Offset),
	}

	var term *string
	if q.Search != nil {
		trimmed := strings.TrimSpace(*q.Search)
		term = &trimmed
		params.Search = trimmed
	}

	apartments, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, params.Search)
	if err != nil {
		return nil, err
	}

	return &domain.ApartmentList{
		Apartments: apartments,
		Total:      total,
		Limit:      params.Limit,
		Offset:     params.Offset,
		SearchTerm: term,
	}, nil
}

// GetApartmentByID returns the listing with id or a NotFound error.
func (s *ApartmentService) GetApartmentByID(ctx context.Context, id int64) (*domain.Apartment, error) {
	apt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.NewNotFoundError(MsgApartmentNotFound)
		}
		return nil, err
	}
	return apt, nil
}

// CreateApartment validates input, rejects taken unit numbers and persists the listing.
// Only the first failing rule is reported.
func (s *ApartmentService) CreateApartment(ctx context.Context, input domain.CreateApartmentInput) (*domain.Apartment, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("unit_number", input.UnitNumber).Logger()

	exists, err := s.repo.ExistsByUnitNumber(ctx, input.UnitNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.duplicate(logger)
	}

	created, err := s.repo.Create(ctx, domain.NewApartment(input))
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost the race against a concurrent insert.
			return nil, s.duplicate(logger)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordApartmentCreated()
	}
	aptLogger := observability.WithApartmentContext(s.logger, created.ID, created.UnitNumber)
	aptLogger.Info().
		Str("project_name", created.ProjectName).
		Msg("apartment created")

	return created, nil
}

func (s *ApartmentService) validateInput(input domain.CreateApartmentInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewInternalError("failed to validate apartment", err)
	}

	field := verrs[0].Field()
	msg, ok := fieldMessages[field]
	if !ok {
		msg = verrs[0].Error()
	}

	if s.metrics != nil {
		s.metrics.RecordValidationFailure(field)
	}
	s.logger.Debug().Str("field", field).Str("tag", verrs[0].Tag()).Msg("apartment rejected")

	return domain.NewValidationError(field, msg)
}

func (s *ApartmentService) duplicate(logger zerolog.Logger) error {
	if s.metrics != nil {
		s.metrics.RecordDuplicateRejected()
	}
	logger.Info().Msg("duplicate unit number rejected")
	return domain.NewValidationError("unitNumber", MsgDuplicateUnit)
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
