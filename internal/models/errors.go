package models

// APIError is the error body returned by all endpoints.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse wraps an APIError in the standard envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}
