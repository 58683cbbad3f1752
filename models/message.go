package models

// Machine-readable error codes carried alongside HTTP status codes.
const (
	CodeDuplicatePeriod = "duplicate_period"
	CodeInvalidRange    = "invalid_range"
	CodeNotFound        = "not_found"
	CodeInvalidInput    = "invalid_input"
	CodeInternal        = "internal_error"
)

type MessageResponse struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

type ValidationResponse struct {
	StatusCode int         `json:"status_code"`
	Code       string      `json:"code"`
	Errors     interface{} `json:"errors"`
}

type DataResponse struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

func NewMessageResponse(statusCode int, message string) MessageResponse {
	return MessageResponse{
		StatusCode: statusCode,
		Message:    message,
	}
}

func NewErrorResponse(statusCode int, code, message string) MessageResponse {
	return MessageResponse{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewValidationResponse(statusCode int, errors interface{}) ValidationResponse {
	return ValidationResponse{
		StatusCode: statusCode,
		Code:       CodeInvalidInput,
		Errors:     errors,
	}
}

func NewDataResponse(statusCode int, message string, data interface{}) DataResponse {
	return DataResponse{
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
	}
}
