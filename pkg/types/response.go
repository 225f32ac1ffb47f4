package types

// SuccessEnvelope wraps every successful response body in a data field, the
// shape the dashboard unpacks.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error payload. Details carries field-level context
// for validation failures and dependency check results.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under an error field.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
