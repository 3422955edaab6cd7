package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

// DebugHandler exposes raw store contents for development and operations.
type DebugHandler struct {
	store *storage.FileStore
}

// NewDebugHandler creates a DebugHandler.
func NewDebugHandler(store *storage.FileStore) *DebugHandler {
	return &DebugHandler{store: store}
}

// Referrals handles GET /debug/referrals: dumps every stored record.
func (h *DebugHandler) Referrals(c *gin.Context) {
	records := h.store.All()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(records),
		"data":    records,
	})
}

// Stats handles GET /debug/stats: store-wide totals.
func (h *DebugHandler) Stats(c *gin.Context) {
	respondData(c, h.store.Statistics())
}
