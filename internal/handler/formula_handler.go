package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-compass-go/internal/model"
	"learning-compass-go/internal/service"
	"learning-compass-go/pkg/log"
)

// FormulaHandler 负责处理公式类别与公式生成请求。
type FormulaHandler struct {
	formulaService service.FormulaService
}

// NewFormulaHandler 创建一个新的 FormulaHandler。
func NewFormulaHandler(formulaService service.FormulaService) *FormulaHandler {
	return &FormulaHandler{formulaService: formulaService}
}

// Categories 把分析结果中的资源名映射为可添加的公式类别。
func (h *FormulaHandler) Categories(c *gin.Context) {
	var req model.FormulaCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request body"})
		return
	}
	log.Infof("[FormulaHandler] 收到公式类别请求, 资源 %d 个", len(req.Resources))

	categories := h.formulaService.Categories(c.Request.Context(), req.Resources, req.ProblemContext)
	c.JSON(http.StatusOK, model.FormulaCategoriesResponse{Categories: categories, Success: true})
}

// Generate 为一个类别生成公式信息。
func (h *FormulaHandler) Generate(c *gin.Context) {
	var req model.FormulaRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CategoryID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Category ID is required"})
		return
	}
	log.Infof("[FormulaHandler] 收到公式生成请求, categoryId: %s", req.CategoryID)

	formula, err := h.formulaService.Generate(c.Request.Context(), req.CategoryID, req.ProblemContext)
	if err != nil {
		log.Errorf("[FormulaHandler] 公式生成失败: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to generate formula", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, formula)
}
