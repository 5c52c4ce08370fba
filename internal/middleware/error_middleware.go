package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to HTTP error responses. When the
// error carries an apperrors.CustomError wrapper its message and details
// replace the generic ones, so repositories and controllers can attach
// row-level context without changing the status mapping.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Message != "" {
			detail.Message = custom.Message
		}
		if custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

// classifyError resolves the status code and default error detail for an
// application error. Lookup misses are expected traffic and carry WARNING
// severity; server-side failures are CRITICAL.
func classifyError(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrDiplomaNotFound):
		return 404, notFoundDetail("Diploma not found")
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return 404, notFoundDetail("Student not found")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return 404, notFoundDetail("Course not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return 404, notFoundDetail("Resource not found")
	case errors.Is(err, apperrors.ErrTemplateNotFound):
		return 500, criticalDetail(dto.ErrorCodeInternalServer, "Diploma template not available")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return 401, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Unauthorized")
	case apperrors.Is(err, apperrors.ErrDiplomaAlreadyIssued, apperrors.ErrFolioAlreadyExists):
		return 409, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Diploma already issued")
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return 400, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrPublishFailed):
		return 502, criticalDetail(dto.ErrorCodeExternalServiceError, "Document storage unavailable")
	default:
		return 500, criticalDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

func notFoundDetail(message string) *dto.ErrorDetail {
	detail := dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)
	detail.Severity = dto.ErrorSeverityWarning
	return detail
}

func criticalDetail(code dto.ErrorCode, message string) *dto.ErrorDetail {
	detail := dto.NewErrorDetail(code, message)
	detail.Severity = dto.ErrorSeverityCritical
	return detail
}
