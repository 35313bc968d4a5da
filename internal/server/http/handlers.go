package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixir/apartment-listing-service/internal/domain"
	"github.com/helixir/apartment-listing-service/internal/observability"
	"github.com/helixir/apartment-listing-service/internal/service"
)

const maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies

// listApartments handles GET /apartments?q=&limit=&offset=.
// Unparseable limit or offset values are ignored rather than rejected.
func (s *Server) listApartments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := service.ListQuery{
		Limit:  optionalInt(query.Get("limit")),
		Offset: optionalInt(query.Get("offset")),
	}
	if query.Has("q") {
		// %FF and friends decode to invalid UTF-8, which Postgres refuses.
		term := strings.ToValidUTF8(query.Get("q"), "\uFFFD")
		q.Search = &term
	}

	list, err := s.apartments.ListApartments(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, err, msgFetchApartmentsFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, dataResponse{Data: list})
}

// getApartment handles GET /apartments/{id}.
func (s *Server) getApartment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseLeadingInt(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, r, http.StatusBadRequest, messageResponse{Message: msgInvalidApartmentID})
		return
	}

	apt, err := s.apartments.GetApartmentByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err, msgFetchApartmentFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, dataResponse{Data: apt})
}

// createApartment handles POST /apartments.
func (s *Server) createApartment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: msgValidationError, Error: msgInvalidRequestBody})
		return
	}

	var input domain.CreateApartmentInput
	if err := json.Unmarshal(body, &input); err != nil {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: msgValidationError, Error: msgInvalidRequestBody})
		return
	}

	apt, err := s.apartments.CreateApartment(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err, msgInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, createdResponse{Message: msgApartmentCreated, Data: apt})
}

// writeServiceError maps a service failure onto a status code and body.
// internalMsg is the endpoint-specific message used for unclassified errors.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	kind := domain.KindOf(err)
	reqLogger := observability.WithRequestContext(s.logger,
		observability.CorrelationIDFromContext(r.Context()), r.Method, r.URL.Path).
		With().Str("kind", kind.String()).Logger()

	switch kind {
	case domain.KindValidation:
		reqLogger.Debug().Err(err).Msg("request rejected")
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: msgValidationError, Error: errorDetail(err)})
	case domain.KindNotFound:
		reqLogger.Debug().Err(err).Msg("apartment not found")
		writeJSON(w, r, http.StatusNotFound, messageResponse{Message: msgApartmentNotFound})
	case domain.KindInternal:
		reqLogger.Error().Err(err).Msg(internalMsg)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Message: internalMsg, Error: errorDetail(err)})
	}
}

// optionalInt parses a query value leniently. Absent or unparseable yields nil.
func optionalInt(raw string) *int {
	v, ok := parseLeadingInt(raw)
	if !ok || v < 0 || int64(int(v)) != v {
		return nil
	}
	n := int(v)
	return &n
}

// parseLeadingInt reads an optionally signed run of decimal digits after any
// leading whitespace and ignores whatever follows, so "12abc" is 12 and "1.9"
// is 1. It fails when no digit is found or the value overflows int64.
func parseLeadingInt(raw string) (int64, bool) {
	s := strings.TrimLeft(raw, " \t\n\r\v\f")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
