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

// MarketHandler handles market catalog endpoints
type MarketHandler struct {
	marketUsecase *usecases.MarketUsecase
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketUsecase *usecases.MarketUsecase) *MarketHandler {
	return &MarketHandler{marketUsecase: marketUsecase}
}

// Create handles POST /api/v1/markets
func (h *MarketHandler) Create(c *gin.Context) {
	promoterID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}

	var input entities.MarketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	market, err := h.marketUsecase.CreateMarket(c.Request.Context(), promoterID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, market)
}

// Get handles GET /api/v1/markets/:id
func (h *MarketHandler) Get(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid market ID"))
		return
	}

	market, err := h.marketUsecase.GetMarket(c.Request.Context(), marketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, market)
}

// List handles GET /api/v1/markets
func (h *MarketHandler) List(c *gin.Context) {
	var query struct {
		Category string `form:"category"`
		Page     int    `form:"page"`
		Limit    int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest("invalid query parameters"))
		return
	}

	markets, meta, err := h.marketUsecase.ListMarkets(c.Request.Context(), query.Category, query.Page, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"markets": markets, "pagination": meta})
}

// GetFormSchema handles GET /api/v1/markets/:id/form
func (h *MarketHandler) GetFormSchema(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid market ID"))
		return
	}

	schema, err := h.marketUsecase.GetFormSchema(c.Request.Context(), marketID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, schema)
}
