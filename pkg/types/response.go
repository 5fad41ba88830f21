package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a failure. Details carries validation issues
// and is omitted for codes that must not leak internals.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx body as {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Success builds the envelope for a successful response. A nil payload is
// rendered as an empty object so clients never see "data": null.
func Success(data any) SuccessEnvelope {
	if data == nil {
		data = struct{}{}
	}
	return SuccessEnvelope{Data: data}
}

// Failure builds the envelope for an error response.
func Failure(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
