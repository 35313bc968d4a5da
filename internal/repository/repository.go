// Package repository provides data access interfaces and implementations
// for the apartment listing service.
//
// # Overview
//
// ApartmentRepository abstracts persistence of apartment listings from the
// service layer. PgApartmentRepository is the PostgreSQL implementation.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple goroutines.
// The underlying pgxpool handles connection pooling and synchronization.
//
// # Error Handling
//
// Lookups that match nothing return a domain error of kind KindNotFound.
// Unique constraint violations surface as domain.ErrAlreadyExists.
// Everything else is wrapped with fmt.Errorf and %w.
//
// # Usage Pattern
//
//	db, _ := database.New(ctx, cfg, logger)
//	repo := repository.NewPgApartmentRepository(db)
package repository

import (
	"strings"

	"github.com/helixir/apartment-listing-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
// A pgx.Tx can be passed wherever the pool is, and pgxmock pools satisfy it in tests.
type DBTX = database.DBTX

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation = "23505" // unique_violation
)

// unitNumberConstraint is the unique constraint on apartments.unit_number.
const unitNumberConstraint = "apartments_unit_number_key"

// likeEscaper escapes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns an ILIKE pattern matching term anywhere in a column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
