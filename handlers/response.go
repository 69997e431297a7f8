package handlers

import (
	"errors"
	"net/http"
	"strings"

	"cctv-surveillance-reports/be/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Bound requests are checked by the same rules as repository writes.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		models.RegisterRules(v)
	}
}

// Every API response carries a success flag; failures put a human readable
// message under "error".

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

func respondData(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Route not found")
}

// bindJSON decodes and validates the body into dst. It answers 413 when the
// body limit was hit, 400 with the field messages for rule failures and
// 400 with badRequest for anything else. It reports whether binding succeeded.
func bindJSON(c *gin.Context, dst interface{}, badRequest string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	bindFailed(c, err, badRequest)
	return false
}

func bindFailed(c *gin.Context, err error, badRequest string) {
	var tooLarge *http.MaxBytesError
	var cast *models.CastError
	switch {
	case errors.As(err, &tooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, "Payload too large. Please reduce image size or upload fewer images.")
	case errors.As(err, &cast):
		respondError(c, http.StatusBadRequest, cast.Error())
	case models.IsInvalid(err):
		respondError(c, http.StatusBadRequest, strings.Join(models.Messages(err), ", "))
	default:
		respondError(c, http.StatusBadRequest, badRequest)
	}
}
