package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"learning-compass-go/internal/model"
	"learning-compass-go/internal/service"
	"learning-compass-go/pkg/log"
)

// ConceptHandler 负责处理概念解释请求。
type ConceptHandler struct {
	conceptService service.ConceptService
}

// NewConceptHandler 创建一个新的 ConceptHandler。
func NewConceptHandler(conceptService service.ConceptService) *ConceptHandler {
	return &ConceptHandler{conceptService: conceptService}
}

// Combined 一次返回概念的解释与关联。
func (h *ConceptHandler) Combined(c *gin.Context) {
	req, ok := bindConcept(c)
	if !ok {
		return
	}
	log.Infof("[ConceptHandler] 收到概念解释请求, concept: %s", req.Concept)

	combined, err := h.conceptService.ExplainCombined(c.Request.Context(), req.Concept, req.ProblemContext)
	if err != nil {
		log.Errorf("[ConceptHandler] 概念解释失败: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to explain concept", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, combined)
}

// Explain 只返回概念解释。
func (h *ConceptHandler) Explain(c *gin.Context) {
	req, ok := bindConcept(c)
	if !ok {
		return
	}

	explanation, err := h.conceptService.Explain(c.Request.Context(), req.Concept, req.ProblemContext)
	if err != nil {
		log.Errorf("[ConceptHandler] 概念解释失败: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to explain concept", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.ConceptExplanationResponse{Explanation: explanation, Success: true})
}

// Relate 只返回概念与问题的关联。
func (h *ConceptHandler) Relate(c *gin.Context) {
	req, ok := bindConcept(c)
	if !ok {
		return
	}

	relation, err := h.conceptService.Relate(c.Request.Context(), req.Concept, req.ProblemContext)
	if err != nil {
		log.Errorf("[ConceptHandler] 概念关联解释失败: %v", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to explain concept relation", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.ConceptRelationResponse{Relation: relation, Success: true})
}

func bindConcept(c *gin.Context) (model.ConceptRequest, bool) {
	var req model.ConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Concept == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Concept is required"})
		return model.ConceptRequest{}, false
	}
	return req, true
}
