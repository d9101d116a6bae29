package types

import "fmt"

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// NewValidationError builds a 400 error for input that never reaches a collaborator.
func NewValidationError(message string) *CustomError {
	return &CustomError{Code: 400, Message: message, Type: "validation.input"}
}

// NewCollaboratorError builds a 502 error carrying a collaborator's message.
func NewCollaboratorError(service, message string) *CustomError {
	return &CustomError{Code: 502, Message: message, Type: "collaborator." + service}
}
