package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid       ErrorCode = "invalid"
	ErrorRequiredField ErrorCode = "required_field"
	ErrorFormat        ErrorCode = "format"
	ErrorIndex         ErrorCode = "index"
	ErrorStorageWrite  ErrorCode = "storage_write"
	ErrorParse         ErrorCode = "parse"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewIndexError(msg string) error   { return &ServiceError{Code: ErrorIndex, Message: msg} }
func NewParseError(msg string) error   { return &ServiceError{Code: ErrorParse, Message: msg} }

func NewRequiredFieldError(questionText string) error {
	return &ServiceError{Code: ErrorRequiredField, Message: "\"" + questionText + "\" is required."}
}

func NewFormatError(questionText, ruleMessage string) error {
	return &ServiceError{Code: ErrorFormat, Message: "\"" + questionText + "\": " + ruleMessage}
}

func NewStorageWriteError(msg string) error {
	return &ServiceError{Code: ErrorStorageWrite, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
