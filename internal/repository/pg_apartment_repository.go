package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/helixir/apartment-listing-service/internal/domain"
)

// Compile-time interface verification.
var _ ApartmentRepository = (*PgApartmentRepository)(nil)

const apartmentColumns = `id, unit_name, unit_number, price, project_name, unit_location,
			area, bathrooms, bedrooms, floor_number, created_at, updated_at`

// PgApartmentRepository is a PostgreSQL implementation of ApartmentRepository.
type PgApartmentRepository struct {
	db DBTX
}

// NewPgApartmentRepository creates a new PostgreSQL apartment repository.
func NewPgApartmentRepository(db DBTX) *PgApartmentRepository {
	return &PgApartmentRepository{db: db}
}

// FindAll returns the filtered, ordered page of listings.
func (r *PgApartmentRepository) FindAll(ctx context.Context, params ListParams) ([]*domain.Apartment, error) {
	whereClause, args := searchCondition(params.Search)
	argIndex := len(args) + 1

	var b strings.Builder
	fmt.Fprintf(&b, `
		SELECT %s
		FROM apartments
		%s
		ORDER BY id ASC`, apartmentColumns, whereClause)

	if params.Limit != nil {
		fmt.Fprintf(&b, " LIMIT $%d", argIndex)
		args = append(args, *params.Limit)
		argIndex++
	}
	if params.Offset != nil {
		fmt.Fprintf(&b, " OFFSET $%d", argIndex)
		args = append(args, *params.Offset)
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	apartments := make([]*domain.Apartment, 0)
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		apartments = append(apartments, apt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartments: %w", err)
	}

	return apartments, nil
}

// Count returns the number of listings matching search.
func (r *PgApartmentRepository) Count(ctx context.Context, search string) (int64, error) {
	whereClause, args := searchCondition(search)
	query := fmt.Sprintf("SELECT COUNT(*) FROM apartments %s", whereClause)

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count apartments: %w", err)
	}
	return total, nil
}

// FindByID retrieves a listing by id.
func (r *PgApartmentRepository) FindByID(ctx context.Context, id int64) (*domain.Apartment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM apartments
		WHERE id = $1`, apartmentColumns)

	apt, err := scanApartment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.Error{
				Kind:    domain.KindNotFound,
				Message: fmt.Sprintf("apartment not found: %d", id),
				Cause:   err,
			}
		}
		return nil, fmt.Errorf("failed to get apartment by ID: %w", err)
	}

	return apt, nil
}

// ExistsByUnitNumber reports whether unitNumber is already taken.
func (r *PgApartmentRepository) ExistsByUnitNumber(ctx context.Context, unitNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM apartments WHERE unit_number = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, unitNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check unit number: %w", err)
	}
	return exists, nil
}

// Create inserts a listing. Id, timestamps and the stored price and area come
// back from the database.
func (r *PgApartmentRepository) Create(ctx context.Context, apartment *domain.Apartment) (*domain.Apartment, error) {
	query := `
		INSERT INTO apartments (
			unit_name, unit_number, price, project_name, unit_location,
			area, bathrooms, bedrooms, floor_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, price, area, created_at, updated_at`

	created := *apartment
	err := r.db.QueryRow(ctx, query,
		apartment.UnitName,
		apartment.UnitNumber,
		apartment.Price,
		apartment.ProjectName,
		apartment.UnitLocation,
		apartment.Area,
		apartment.Bathrooms,
		apartment.Bedrooms,
		apartment.FloorNumber,
	).Scan(&created.ID, &created.Price, &created.Area, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err, unitNumberConstraint) {
			return nil, domain.NewAlreadyExistsError("apartment", apartment.UnitNumber)
		}
		return nil, fmt.Errorf("failed to create apartment: %w", err)
	}

	return &created, nil
}

// searchCondition builds the shared WHERE clause for FindAll and Count.
// The term occupies $1 when present. Invalid UTF-8 is replaced so Postgres
// accepts the bind; such a term simply matches nothing.
func searchCondition(search string) (string, []interface{}) {
	term := strings.TrimSpace(strings.ToValidUTF8(search, "\uFFFD"))
	if term == "" {
		return "", nil
	}
	return "WHERE (project_name ILIKE $1 OR unit_name ILIKE $1 OR unit_number ILIKE $1)",
		[]interface{}{containsPattern(term)}
}

// isPgUniqueViolation checks if the error is a PostgreSQL unique violation
// of the named constraint.
func isPgUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

// scanApartment reads one row in apartmentColumns order. pgx.Rows satisfies pgx.Row.
func scanApartment(row pgx.Row) (*domain.Apartment, error) {
	var apt domain.Apartment
	err := row.Scan(
		&apt.ID,
		&apt.UnitName,
		&apt.UnitNumber,
		&apt.Price,
		&apt.ProjectName,
		&apt.UnitLocation,
		&apt.Area,
		&apt.Bathrooms,
		&apt.Bedrooms,
		&apt.FloorNumber,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &apt, nil
}
