package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"learning-compass-go/internal/model"
)

// Health 是健康检查处理函数。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
