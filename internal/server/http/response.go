package httpserver

// Response envelopes for JSON serialization. Field names are the ones the web
// client reads.

type dataResponse struct {
	Data interface{} `json:"data"`
}

type createdResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Fixed client-facing messages.
const (
	msgFetchApartmentsFailed = "Failed to fetch apartments"
	msgFetchApartmentFailed  = "Failed to fetch apartment"
	msgInvalidApartmentID    = "Invalid apartment ID"
	msgApartmentNotFound     = "Apartment not found"
	msgApartmentCreated      = "Apartment created successfully"
	msgValidationError       = "Validation error"
	msgInternalServerError   = "Internal server error"
	msgInvalidRequestBody    = "Invalid request body"
	msgUnknownError          = "Unknown error"
)

// errorDetail returns the text placed in the error field of a failure body.
func errorDetail(err error) string {
	if err == nil || err.Error() == "" {
		return msgUnknownError
	}
	return err.Error()
}
