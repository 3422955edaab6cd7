// Package handler implements the HTTP surface: the share and invite redirect
// endpoints, the app-open probe page, the short-link expander, and the JSON
// API for share-link generation, click lookup, and statistics.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/chuthuong2004/selfhost-deeplink-demo/internal/errors"
)

// respondData writes a 200 response in the stable success envelope.
func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the error in the stable error envelope with the status
// code mapped from the error type.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// NotFound handles unmatched routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Route not found",
			"path":    c.Request.URL.Path,
		})
	}
}

// resourceID reads the canonical id query parameter, falling back to the
// legacy productId name older links still carry.
func resourceID(c *gin.Context) string {
	if id := c.Query("id"); id != "" {
		return id
	}
	return c.Query("productId")
}
