package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"rumfor-market.backend/internal/domain/entities"
	domainerrors "rumfor-market.backend/internal/domain/errors"
	"rumfor-market.backend/internal/interfaces/http/middleware"
	"rumfor-market.backend/internal/interfaces/http/response"
	"rumfor-market.backend/internal/usecases"
)

// ApplicationHandler handles vendor application endpoints
type ApplicationHandler struct {
	applicationUsecase *usecases.ApplicationUsecase
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applicationUsecase *usecases.ApplicationUsecase) *ApplicationHandler {
	return &ApplicationHandler{applicationUsecase: applicationUsecase}
}

// SaveDraft handles PUT /api/v1/applications/draft
func (h *ApplicationHandler) SaveDraft(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.ApplicationDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	result, err := h.applicationUsecase.SaveDraft(c.Request.Context(), vendorID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Autosave handles POST /api/v1/applications/draft/autosave. The write is
// debounced; a burst of edits produces one persisted snapshot.
func (h *ApplicationHandler) Autosave(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.ApplicationDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	failing, err := h.applicationUsecase.Autosave(c.Request.Context(), vendorID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"scheduled": true, "autosaveFailing": failing})
}

// LoadDraft handles GET /api/v1/markets/:id/draft
func (h *ApplicationHandler) LoadDraft(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid market ID"))
		return
	}

	snapshot, err := h.applicationUsecase.LoadDraft(c.Request.Context(), vendorID, marketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusOK, gin.H{"draft": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": snapshot})
}

// DiscardDraft handles DELETE /api/v1/markets/:id/draft
func (h *ApplicationHandler) DiscardDraft(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid market ID"))
		return
	}

	if err := h.applicationUsecase.DiscardDraft(c.Request.Context(), vendorID, marketID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft discarded"})
}

// Submit handles POST /api/v1/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.ApplicationDraftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	app, err := h.applicationUsecase.Submit(c.Request.Context(), vendorID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, app)
}

// Withdraw handles POST /api/v1/applications/:id/withdraw
func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid application ID"))
		return
	}

	var input entities.WithdrawInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	app, err := h.applicationUsecase.Withdraw(c.Request.Context(), vendorID, appID, input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// UpdateStatus handles PATCH /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	role, _ := middleware.GetUserRole(c)

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid application ID"))
		return
	}

	var input entities.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	app, err := h.applicationUsecase.UpdateStatus(c.Request.Context(), reviewerID, role, appID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// BulkUpdateStatus handles PATCH /api/v1/applications/bulk-status
func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	role, _ := middleware.GetUserRole(c)

	var input entities.BulkUpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	result, err := h.applicationUsecase.BulkUpdateStatus(c.Request.Context(), reviewerID, role, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Get handles GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	requesterID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	role, _ := middleware.GetUserRole(c)

	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid application ID"))
		return
	}

	app, err := h.applicationUsecase.GetApplication(c.Request.Context(), requesterID, role, appID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, app)
}

// ListMine handles GET /api/v1/applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	vendorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid query parameters"))
		return
	}
	status := entities.ApplicationStatus(query.Status)
	if query.Status != "" && !status.IsValid() {
		response.Error(c, domainerrors.BadRequest("unknown application status"))
		return
	}

	apps, meta, err := h.applicationUsecase.ListMyApplications(c.Request.Context(), vendorID, status, query.Page, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "pagination": meta})
}

// ListByMarket handles GET /api/v1/markets/:id/applications
func (h *ApplicationHandler) ListByMarket(c *gin.Context) {
	reviewerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	role, _ := middleware.GetUserRole(c)

	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid market ID"))
		return
	}

	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid query parameters"))
		return
	}
	status := entities.ApplicationStatus(query.Status)
	if query.Status != "" && !status.IsValid() {
		response.Error(c, domainerrors.BadRequest("unknown application status"))
		return
	}

	apps, meta, err := h.applicationUsecase.ListMarketApplications(c.Request.Context(), reviewerID, role, marketID, status, query.Page, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "pagination": meta})
}

// ValidateUploads handles POST /api/v1/applications/validate-uploads.
// Attachment metadata is checked before the client bothers uploading bytes.
func (h *ApplicationHandler) ValidateUploads(c *gin.Context) {
	var input struct {
		Files []entities.UploadedFile `json:"files" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	if errs := usecases.ValidateUploads(input.Files); len(errs) > 0 {
		response.Error(c, domainerrors.NewValidationError(errs))
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

type listQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
