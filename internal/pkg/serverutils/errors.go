package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is the structured error envelope every handler returns instead
// of raw errors. Code is stable for support correlation; Details carries
// machine-readable context (e.g. usage counts for the upgrade prompt).
type AppError struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotAuthenticated() *AppError {
	return &AppError{
		Code:    "NOT_AUTHENTICATED",
		Message: "Authentication required",
		Status:  fiber.StatusUnauthorized,
	}
}

func UserNotFound() *AppError {
	return &AppError{
		Code:    "USER_NOT_FOUND",
		Message: "User account not found",
		Status:  fiber.StatusNotFound,
	}
}

// UsageLimitReached carries the counts so the UI can render the upgrade prompt.
func UsageLimitReached(used, limit int) *AppError {
	return &AppError{
		Code:    "USAGE_LIMIT_REACHED",
		Message: fmt.Sprintf("Monthly generation limit reached (%d/%d)", used, limit),
		Status:  fiber.StatusForbidden,
		Details: map[string]interface{}{
			"usage_count": used,
			"usage_limit": limit,
		},
	}
}

func GenerationFailed(detail string) *AppError {
	return &AppError{
		Code:    "GENERATION_FAILED",
		Message: "Image generation failed",
		Status:  fiber.StatusBadGateway,
		Details: map[string]interface{}{"provider_detail": detail},
	}
}

func GenerationTimeout() *AppError {
	return &AppError{
		Code:    "GENERATION_TIMEOUT",
		Message: "Image generation did not finish in time",
		Status:  fiber.StatusGatewayTimeout,
	}
}

func NoOutput() *AppError {
	return &AppError{
		Code:    "NO_OUTPUT",
		Message: "The generation job finished without producing an image",
		Status:  fiber.StatusBadGateway,
	}
}

func WebhookSignatureInvalid() *AppError {
	return &AppError{
		Code:    "WEBHOOK_SIGNATURE_INVALID",
		Message: "Webhook signature verification failed",
		Status:  fiber.StatusBadRequest,
	}
}

// ConfigurationError marks a missing external credential. Fatal for the
// request, not for the process.
func ConfigurationError(what string) *AppError {
	return &AppError{
		Code:    "CONFIGURATION_ERROR",
		Message: fmt.Sprintf("Server configuration incomplete: %s", what),
		Status:  fiber.StatusInternalServerError,
	}
}

func ValidationError(details map[string]interface{}) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: "Request validation failed",
		Status:  fiber.StatusBadRequest,
		Details: details,
	}
}
