package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
)

// ProductAPIHandler serves the JSON API under /api/product.
type ProductAPIHandler struct {
	shares *service.ShareService
	meta   *service.MetadataService
	log    logger.Logger
}

// NewProductAPIHandler creates a ProductAPIHandler.
func NewProductAPIHandler(shares *service.ShareService, meta *service.MetadataService, log logger.Logger) *ProductAPIHandler {
	return &ProductAPIHandler{shares: shares, meta: meta, log: log}
}

type generateShareLinkRequest struct {
	ResourceID   string            `json:"productId"`
	ReferralCode string            `json:"ref"`
	UserID       string            `json:"userId"`
	Metadata     map[string]string `json:"metadata"`
}

// GenerateShareLink handles POST /api/product/generate-share-link.
func (h *ProductAPIHandler) GenerateShareLink(c *gin.Context) {
	var req generateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("body", "must be valid JSON"))
		return
	}

	link, err := h.shares.GenerateShareLink(service.GenerateShareLinkInput{
		ResourceID:   req.ResourceID,
		ReferralCode: req.ReferralCode,
		UserID:       req.UserID,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, link)
}

// Stats handles GET /api/product/stats/:productId.
func (h *ProductAPIHandler) Stats(c *gin.Context) {
	respondData(c, h.shares.ProductStatistics(c.Param("productId")))
}

// Click handles GET /api/product/click/:clickId.
func (h *ProductAPIHandler) Click(c *gin.Context) {
	rec, err := h.shares.GetClick(c.Param("clickId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, rec)
}

type updateMetadataRequest struct {
	ResourceID  string `json:"productId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// UpdateMetadata handles POST /api/product/update-metadata: sets the social
// preview fields rendered into the share interstitial.
func (h *ProductAPIHandler) UpdateMetadata(c *gin.Context) {
	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.NewValidation("body", "must be valid JSON"))
		return
	}
	if req.ResourceID == "" {
		respondError(c, apperrors.NewValidation("productId", "is required"))
		return
	}

	meta := h.meta.Update(req.ResourceID, req.Title, req.Description, req.Image)
	h.log.Info("Updated product metadata", logger.String("product_id", req.ResourceID))
	respondData(c, meta)
}
