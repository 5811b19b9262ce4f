package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-compass-go/internal/model"
)

func formulaRouter(svc *stubFormulaService) *gin.Engine {
	router := gin.New()
	h := NewFormulaHandler(svc)
	router.POST("/api/formulas/categories", h.Categories)
	router.POST("/api/formulas", h.Generate)
	return router
}

func TestFormulaCategories(t *testing.T) {
	router := formulaRouter(&stubFormulaService{
		categoriesFn: func(resources []string, problemContext string) []model.FormulaCategory {
			assert.Equal(t, []string{"Kinematic Equations"}, resources)
			return []model.FormulaCategory{{ID: "kinematic-equations", Name: "Kinematic Equations"}}
		},
	})

	rec := perform(router, http.MethodPost, "/api/formulas/categories",
		`{"resources":["Kinematic Equations"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.FormulaCategoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Categories, 1)
	assert.Equal(t, "kinematic-equations", resp.Categories[0].ID)
}

func TestFormulaCategoriesEmptyBodyFields(t *testing.T) {
	// 字段全缺省也是合法请求，映射为空类别列表
	router := formulaRouter(&stubFormulaService{
		categoriesFn: func(resources []string, problemContext string) []model.FormulaCategory {
			assert.Nil(t, resources)
			return []model.FormulaCategory{}
		},
	})

	rec := perform(router, http.MethodPost, "/api/formulas/categories", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"categories":[]`)
}

func TestFormulaCategoriesBadBody(t *testing.T) {
	router := formulaRouter(&stubFormulaService{})
	rec := perform(router, http.MethodPost, "/api/formulas/categories", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestFormulaGenerate(t *testing.T) {
	router := formulaRouter(&stubFormulaService{
		generateFn: func(categoryID, problemContext string) (model.FormulaResponse, error) {
			assert.Equal(t, "kinematic-equations", categoryID)
			return model.FormulaResponse{Title: "Kinematic Equations", Formula: "v = v0 + at", Variables: []model.Variable{}, Success: true}, nil
		},
	})

	rec := perform(router, http.MethodPost, "/api/formulas",
		`{"categoryId":"kinematic-equations","problemContext":"a ball is thrown"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.FormulaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "v = v0 + at", resp.Formula)
	assert.True(t, resp.Success)
}

func TestFormulaGenerateValidation(t *testing.T) {
	router := formulaRouter(&stubFormulaService{})
	rec := perform(router, http.MethodPost, "/api/formulas", `{"categoryId":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category ID is required")
}

func TestFormulaGenerateError(t *testing.T) {
	router := formulaRouter(&stubFormulaService{
		generateFn: func(categoryID, problemContext string) (model.FormulaResponse, error) {
			return model.FormulaResponse{}, errors.New("upstream down")
		},
	})

	rec := perform(router, http.MethodPost, "/api/formulas", `{"categoryId":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate formula")
}
