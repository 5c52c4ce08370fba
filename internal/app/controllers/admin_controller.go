package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/portalescolar/diplomas/internal/app/models/dto"
	"github.com/portalescolar/diplomas/internal/app/services"
	"github.com/portalescolar/diplomas/internal/middleware"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// asyncBatchTimeout caps a background generation batch.
const asyncBatchTimeout = 30 * time.Minute

// AdminController handles the token-gated administrative endpoints
type AdminController struct {
	generationService services.GenerationService
	statusService     services.StatusService
	auditService      services.AuditService
	syncService       services.SyncService
	logger            zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(
	generationService services.GenerationService,
	statusService services.StatusService,
	auditService services.AuditService,
	syncService services.SyncService,
	logger zerolog.Logger,
) *AdminController {
	return &AdminController{
		generationService: generationService,
		statusService:     statusService,
		auditService:      auditService,
		syncService:       syncService,
		logger:            logger,
	}
}

// Generar handles batch diploma generation
// @Summary Generate pending diplomas
// @Description Issues a diploma for every enrollment without a valid one. With studentId, only that student's diplomas. With async=true, the batch runs in the background and 202 is returned immediately.
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param studentId query int false "Limit generation to one student"
// @Param async query bool false "Run the batch in the background"
// @Success 200 {object} dto.APIResponse{data=dto.BatchResultResponse} "Batch finished"
// @Success 202 {object} dto.APIResponse{data=dto.SuccessResponse} "Batch accepted"
// @Failure 401 {object} dto.ErrorResponse "Admin token missing or invalid"
// @Failure 404 {object} dto.ErrorResponse "Unknown student"
// @Router /admin/generar [post]
func (c *AdminController) Generar(ctx *gin.Context) {
	var studentID *int64
	if raw := ctx.Query("studentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			middleware.HandleAPIError(ctx, apperrors.ErrValidationFailed)
			return
		}
		studentID = &id
	}

	if ctx.Query("async") == "true" {
		go c.runAsyncBatch(studentID)
		ctx.JSON(http.StatusAccepted, dto.APIResponse{
			Data:      dto.SuccessResponse{Message: "Generation batch accepted"},
			Timestamp: time.Now(),
		})
		return
	}

	result, err := c.generate(ctx, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.BatchResultResponse{
			Pending:   result.Pending,
			Generated: result.Generated,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
		},
		Timestamp: time.Now(),
	})
}

func (c *AdminController) generate(ctx context.Context, studentID *int64) (*services.BatchResult, error) {
	if studentID != nil {
		return c.generationService.GenerateForStudent(ctx, *studentID)
	}
	return c.generationService.GenerateBatch(ctx)
}

// runAsyncBatch detaches the batch from the request so it survives the
// response being written.
func (c *AdminController) runAsyncBatch(studentID *int64) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncBatchTimeout)
	defer cancel()

	if _, err := c.generate(ctx, studentID); err != nil {
		c.logger.Error().Err(err).Msg("Background generation batch failed")
	}
}

// Sync handles republishing local documents to remote storage
// @Summary Sync documents to remote storage
// @Tags admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} dto.APIResponse{data=dto.SyncResultResponse} "Sync finished"
// @Failure 401 {object} dto.ErrorResponse "Admin token missing or invalid"
// @Router /admin/sync [post]
func (c *AdminController) Sync(ctx *gin.Context) {
	result, err := c.syncService.Run(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}

// Auditar handles the ledger integrity audit
// @Summary Audit the diploma ledger
// @Description Re-hashes every published document and reports drifted or missing ones. With repair=true, drifted digests are rewritten.
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param repair query bool false "Rewrite drifted digests"
// @Success 200 {object} dto.APIResponse{data=dto.AuditReportResponse} "Audit finished"
// @Failure 401 {object} dto.ErrorResponse "Admin token missing or invalid"
// @Router /admin/auditar [post]
func (c *AdminController) Auditar(ctx *gin.Context) {
	repair := ctx.Query("repair") == "true"

	report, err := c.auditService.Run(ctx, repair)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      report,
		Timestamp: time.Now(),
	})
}

// Void handles invalidating a diploma
// @Summary Void a diploma
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param folio path string true "Diploma folio"
// @Success 200 {object} dto.APIResponse{data=dto.StatusChangeResponse} "Diploma voided"
// @Failure 404 {object} dto.ErrorResponse "Unknown folio"
// @Router /admin/diplomas/{folio}/void [post]
func (c *AdminController) Void(ctx *gin.Context) {
	c.changeStatus(ctx, c.statusService.Void)
}

// Restore handles returning a voided diploma to valid
// @Summary Restore a voided diploma
// @Tags admin
// @Produce json
// @Security AdminToken
// @Param folio path string true "Diploma folio"
// @Success 200 {object} dto.APIResponse{data=dto.StatusChangeResponse} "Diploma restored"
// @Failure 404 {object} dto.ErrorResponse "Unknown folio"
// @Router /admin/diplomas/{folio}/restore [post]
func (c *AdminController) Restore(ctx *gin.Context) {
	c.changeStatus(ctx, c.statusService.Restore)
}

func (c *AdminController) changeStatus(ctx *gin.Context, transition func(context.Context, string) (*dto.StatusChangeResponse, error)) {
	folio, err := folioParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response, err := transition(ctx, folio)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      response,
		Timestamp: time.Now(),
	})
}
