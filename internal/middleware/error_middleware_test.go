package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

func handleError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	HandleAPIError(c, err)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return &resp
}

func TestHandleAPIErrorNotFound(t *testing.T) {
	w := handleError(apperrors.ErrDiplomaNotFound)
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, resp.Error.Code)
	assert.Equal(t, "Diploma not found", resp.Error.Message)
	assert.Equal(t, dto.ErrorSeverityWarning, resp.Error.Severity)
}

func TestHandleAPIErrorConflict(t *testing.T) {
	w := handleError(apperrors.ErrFolioAlreadyExists)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, decodeError(t, w).Error.Code)
}

func TestHandleAPIErrorValidation(t *testing.T) {
	w := handleError(apperrors.ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, w).Error.Code)
}

func TestHandleAPIErrorPublishFailed(t *testing.T) {
	w := handleError(apperrors.ErrPublishFailed)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeExternalServiceError, resp.Error.Code)
	assert.Equal(t, dto.ErrorSeverityCritical, resp.Error.Severity)
}

func TestHandleAPIErrorUnknown(t *testing.T) {
	w := handleError(errors.New("pool exhausted"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeInternalServer, resp.Error.Code)
	assert.Equal(t, dto.ErrorSeverityCritical, resp.Error.Severity)
}

func TestHandleAPIErrorSurfacesCustomMessage(t *testing.T) {
	err := apperrors.NewCustomError(apperrors.ErrDiplomaAlreadyIssued,
		"a valid diploma already exists for this student and course").
		WithDetails(map[string]interface{}{"studentId": int64(7)})

	w := handleError(err)
	assert.Equal(t, http.StatusConflict, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeResourceAlreadyExists, resp.Error.Code)
	assert.Equal(t, "a valid diploma already exists for this student and course", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestHandleAPIErrorBadRequestHelper(t *testing.T) {
	w := handleError(apperrors.NewBadRequestError("folio must be between 1 and 64 characters"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "folio must be between 1 and 64 characters", decodeError(t, w).Error.Message)
}
