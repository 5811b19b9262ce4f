package service

import (
	"context"
	"regexp"
	"strings"

	"learning-compass-go/internal/config"
	"learning-compass-go/internal/model"
	"learning-compass-go/internal/prompt"
	"learning-compass-go/internal/repository"
	"learning-compass-go/pkg/jsonextract"
	"learning-compass-go/pkg/llm"
	"learning-compass-go/pkg/log"
)

// FormulaService 定义了公式类别与公式生成的接口。
type FormulaService interface {
	// Categories 把资源名列表映射为类别。resources 为空但有问题上下文时，
	// 重新分析问题并映射其公式标题；两者都没有时返回空列表。
	Categories(ctx context.Context, resources []string, problemContext string) []model.FormulaCategory
	// Generate 为一个类别生成公式信息。模型 JSON 不合规时回退为固定记录。
	Generate(ctx context.Context, categoryID, problemContext string) (model.FormulaResponse, error)
}

type formulaService struct {
	llmClient   llm.Client
	chatService ChatService
	cache       repository.CacheRepository
}

// NewFormulaService 创建一个新的 FormulaService 实例。
func NewFormulaService(llmClient llm.Client, chatService ChatService, cache repository.CacheRepository) FormulaService {
	return &formulaService{llmClient: llmClient, chatService: chatService, cache: cache}
}

// Categories 返回可添加的公式类别列表。
func (s *formulaService) Categories(ctx context.Context, resources []string, problemContext string) []model.FormulaCategory {
	if resources != nil {
		return categoriesFromNames(resources)
	}
	if problemContext != "" {
		// 调用方没带资源列表时重新分析问题上下文
		analysis := s.chatService.AnalyzeQuestion(ctx, problemContext)
		names := make([]string, 0, len(analysis.Formulas))
		for _, f := range analysis.Formulas {
			names = append(names, f.Title)
		}
		return categoriesFromNames(names)
	}
	return []model.FormulaCategory{}
}

// Generate 为指定类别生成公式信息，相同输入的结果会被缓存。
func (s *formulaService) Generate(ctx context.Context, categoryID, problemContext string) (model.FormulaResponse, error) {
	key := repository.CacheKey("formula", categoryID, problemContext)
	var cached model.FormulaResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	resourceName := CategoryName(categoryID)
	text, err := s.llmClient.ChatMessages(ctx,
		[]llm.Message{llm.TextMessage(model.RoleUser, prompt.BuildFormulaGeneration(resourceName, problemContext))},
		llm.CallOptions{MaxTokens: config.Conf.LLM.FormulaBudget()},
	)
	if err != nil {
		return model.FormulaResponse{}, err
	}

	var formula model.FormulaResponse
	if parseErr := jsonextract.Unmarshal(text, &formula); parseErr != nil {
		log.Warnf("公式 JSON 解析失败: %v, 原始输出: %s", parseErr, text)
		formula = model.FormulaResponse{
			Title:     resourceName,
			Formula:   "Formula not available",
			Variables: []model.Variable{},
		}
	}
	if formula.Variables == nil {
		formula.Variables = []model.Variable{}
	}
	formula.Success = true
	s.cache.SetJSON(ctx, key, formula)
	return formula, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CategoryID 由类别名派生标识：小写并把空白段折叠为连字符。
// 类别的身份就是这个标识，同名类别在侧边栏中永远只有一张卡片。
func CategoryID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// CategoryName 把类别标识还原为展示名：连字符变空格，每个词首字母大写。
func CategoryName(id string) string {
	words := strings.Split(id, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func categoriesFromNames(names []string) []model.FormulaCategory {
	categories := make([]model.FormulaCategory, 0, len(names))
	for _, name := range names {
		categories = append(categories, model.FormulaCategory{ID: CategoryID(name), Name: name})
	}
	return categories
}
