package api

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"campaigniq-backend/internal/dataset"
)

// AppError is the wire error envelope. Status is the HTTP status and stays
// out of the JSON body.
type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Row     int    `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func UnknownDatasetError(name string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_DATASET",
		Status:  404,
		Message: fmt.Sprintf("Unknown dataset: %s", name),
	}
}

func InvalidPayloadError(msg string) *AppError {
	return &AppError{
		Code:    "INVALID_PAYLOAD",
		Status:  400,
		Message: msg,
	}
}

func InvalidFilterError(msg string) *AppError {
	return &AppError{
		Code:    "INVALID_FILTER",
		Status:  422,
		Message: msg,
	}
}

// SchemaError wraps a fully rejected upload: every row failed validation.
func SchemaError(errs []dataset.RowError) *AppError {
	details := make([]ErrorDetail, 0, len(errs))
	for _, e := range errs {
		details = append(details, ErrorDetail{
			Row:     e.Row,
			Field:   e.Field,
			Rule:    e.Rule,
			Message: e.Message,
		})
	}
	return &AppError{
		Code:    "SCHEMA_ERROR",
		Status:  422,
		Message: "All rows failed validation",
		Details: details,
	}
}

// ErrorHandler is the fiber error handler: AppErrors keep their code and
// status, everything else is logged and collapsed to INTERNAL_ERROR.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	log.Printf("ERROR: %v", err)
	return c.Status(status).JSON(ErrorResponse{
		Error: NewAppError("INTERNAL_ERROR", status, "Internal server error"),
	})
}

func StorageUnavailableError() *AppError {
	return &AppError{
		Code:    "STORAGE_UNAVAILABLE",
		Status:  503,
		Message: "Durable storage is unavailable; session is in-memory only",
	}
}
