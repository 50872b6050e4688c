package model

// ListResponse is the standard envelope for list endpoints.
type ListResponse struct {
	Data []interface{} `json:"data"`
	Meta *ResponseMeta `json:"meta,omitempty"`
}

// ResponseMeta contains count information for list responses.
type ResponseMeta struct {
	Count int `json:"count"`
}

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
// Messages never carry internal state; infrastructure faults are logged
// server-side and surfaced as a generic message.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
