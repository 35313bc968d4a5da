// Package domain provides the apartment listing model and the error taxonomy
// shared by the repository, service and transport layers.
package domain

import "time"

// Apartment is a single unit listing. ID and the timestamps are assigned by the store.
type Apartment struct {
	ID           int64     `json:"id"`
	UnitName     string    `json:"unitName"`
	UnitNumber   string    `json:"unitNumber"`
	Price        float64   `json:"price"`
	ProjectName  string    `json:"projectName"`
	UnitLocation string    `json:"unitLocation"`
	Area         float64   `json:"area"`
	Bathrooms    int       `json:"bathrooms"`
	Bedrooms     int       `json:"bedrooms"`
	FloorNumber  string    `json:"floorNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateApartmentInput is the payload accepted when creating a listing.
//
// Field order is the order in which rules are checked; only the first
// failure is reported. Numeric fields are pointers so a missing value is
// distinguishable from zero.
type CreateApartmentInput struct {
	UnitName     string   `json:"unitName" validate:"notblank"`
	UnitNumber   string   `json:"unitNumber" validate:"notblank"`
	ProjectName  string   `json:"projectName" validate:"notblank"`
	UnitLocation string   `json:"unitLocation" validate:"notblank"`
	Price        *float64 `json:"price" validate:"required,gt=0"`
	Area         *float64 `json:"area" validate:"required,gt=0"`
	Bathrooms    *int     `json:"bathrooms" validate:"required,gte=0"`
	Bedrooms     *int     `json:"bedrooms" validate:"required,gte=0"`
	FloorNumber  string   `json:"floorNumber" validate:"notblank"`
}

// NewApartment builds the unsaved entity from a validated input.
// Pointer fields must be non-nil.
func NewApartment(in CreateApartmentInput) *Apartment {
	return &Apartment{
		UnitName:     in.UnitName,
		UnitNumber:   in.UnitNumber,
		Price:        *in.Price,
		ProjectName:  in.ProjectName,
		UnitLocation: in.UnitLocation,
		Area:         *in.Area,
		Bathrooms:    *in.Bathrooms,
		Bedrooms:     *in.Bedrooms,
		FloorNumber:  in.FloorNumber,
	}
}

// ApartmentList is one page of listings plus pagination metadata.
// Limit and Offset echo what the caller supplied, including zero.
// SearchTerm is the trimmed term, present whenever a term was supplied.
type ApartmentList struct {
	Apartments []*Apartment `json:"apartments"`
	Total      int64        `json:"total"`
	Limit      *int         `json:"limit,omitempty"`
	Offset     *int         `json:"offset,omitempty"`
	SearchTerm *string      `json:"searchTerm,omitempty"`
}
