package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/app/services"
	"github.com/portalescolar/diplomas/internal/middleware"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// VerificationController handles the public verification endpoints
type VerificationController struct {
	verificationService services.VerificationService
}

// NewVerificationController creates a new VerificationController
func NewVerificationController(verificationService services.VerificationService) *VerificationController {
	return &VerificationController{verificationService: verificationService}
}

// Verificar handles the verification lookup reached from a diploma's QR code
// @Summary Verify a diploma
// @Description Returns the verification artifact for a folio. Voided diplomas keep their metadata but lose the download link.
// @Tags verification
// @Produce json
// @Param folio path string true "Diploma folio"
// @Success 200 {object} dto.APIResponse{data=dto.VerificationResponse} "Diploma found"
// @Failure 400 {object} dto.ErrorResponse "Malformed folio"
// @Failure 404 {object} dto.ErrorResponse "Unknown folio"
// @Router /verificar/{folio} [get]
func (c *VerificationController) Verificar(ctx *gin.Context) {
	folio, err := folioParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response, err := c.verificationService.VerifyByFolio(ctx, folio)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}

// Estado handles the machine-readable status lookup
// @Summary Get diploma status
// @Tags verification
// @Produce json
// @Param folio path string true "Diploma folio"
// @Success 200 {object} dto.APIResponse{data=dto.EstadoResponse} "Status retrieved"
// @Failure 404 {object} dto.ErrorResponse "Unknown folio"
// @Router /api/estado/{folio} [get]
func (c *VerificationController) Estado(ctx *gin.Context) {
	folio, err := folioParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response, err := c.verificationService.Estado(ctx, folio)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}

// Ingresar handles the student portal lookup by CURP
// @Summary List a student's diplomas
// @Tags verification
// @Produce json
// @Param curp query string true "Student CURP"
// @Success 200 {object} dto.APIResponse{data=dto.PortalResponse} "Diplomas retrieved"
// @Failure 400 {object} dto.ErrorResponse "Missing CURP"
// @Failure 404 {object} dto.ErrorResponse "Unknown CURP"
// @Router /ingresar [get]
func (c *VerificationController) Ingresar(ctx *gin.Context) {
	curp := strings.ToUpper(strings.TrimSpace(ctx.Query("curp")))
	if curp == "" {
		middleware.HandleAPIError(ctx, apperrors.ErrValidationFailed)
		return
	}

	response, err := c.verificationService.ListByNationalID(ctx, curp)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}

// maxFolioLen matches the ledger's folio column width.
const maxFolioLen = 64

// folioParam reads the folio path parameter. Folios are opaque tokens, so
// only emptiness and the column width are checked here; whether the folio
// exists is decided by the lookup itself.
func folioParam(ctx *gin.Context) (string, error) {
	folio := strings.TrimSpace(ctx.Param("folio"))
	if folio == "" || len(folio) > maxFolioLen {
		return "", apperrors.NewBadRequestError("folio must be between 1 and 64 characters")
	}
	return folio, nil
}
