// Package observability provides logging and metrics support for the
// apartment listing service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for HTTP traffic and listing operations
//   - Context helpers for propagating the correlation ID
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Int64("apartment_id", id).Msg("apartment created")
//
// Add request context to a logger:
//
//	logger = observability.WithRequestContext(logger, correlationID, r.Method, r.URL.Path)
//
// # Metrics
//
// Metrics register against an explicit registry so tests can use a fresh one:
//
//	reg := prometheus.NewRegistry()
//	metrics := observability.NewMetrics("apartments", reg)
//	metrics.RecordApartmentCreated()
//
// # Context Helpers
//
//	ctx = observability.WithCorrelationID(ctx, id)
//	id := observability.CorrelationIDFromContext(ctx)
//
// # Standard Fields
//
//   - correlation_id: per-request identifier echoed in X-Correlation-ID
//   - method, path, route, status: HTTP request attributes
//   - apartment_id, unit_number: listing identifiers
//   - search_term: trimmed free-text filter
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
