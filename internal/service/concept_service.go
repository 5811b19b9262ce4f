package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"learning-compass-go/internal/config"
	"learning-compass-go/internal/model"
	"learning-compass-go/internal/prompt"
	"learning-compass-go/internal/repository"
	"learning-compass-go/pkg/jsonextract"
	"learning-compass-go/pkg/llm"
	"learning-compass-go/pkg/log"
)

// ConceptService 定义了概念解释的接口。
type ConceptService interface {
	// ExplainCombined 用合并提示词一次取得解释与关联。模型 JSON 不合规时
	// 回退为两次并行的单用途调用，只有上游本身失败才返回错误。
	ExplainCombined(ctx context.Context, concept, problemContext string) (model.CombinedConceptResponse, error)
	// Explain 只取得概念解释。
	Explain(ctx context.Context, concept, problemContext string) (string, error)
	// Relate 只取得概念与问题的关联。
	Relate(ctx context.Context, concept, problemContext string) (string, error)
}

type conceptService struct {
	llmClient llm.Client
	cache     repository.CacheRepository
}

// NewConceptService 创建一个新的 ConceptService 实例。
func NewConceptService(llmClient llm.Client, cache repository.CacheRepository) ConceptService {
	return &conceptService{llmClient: llmClient, cache: cache}
}

// ExplainCombined 取得概念的解释与关联，相同输入的结果会被缓存。
func (s *conceptService) ExplainCombined(ctx context.Context, concept, problemContext string) (model.CombinedConceptResponse, error) {
	key := repository.CacheKey("concept:combined", concept, problemContext)
	var cached model.CombinedConceptResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	text, err := s.llmClient.ChatMessages(ctx,
		[]llm.Message{llm.TextMessage(model.RoleUser, prompt.BuildCombinedConcept(concept, problemContext))},
		llm.CallOptions{MaxTokens: config.Conf.LLM.ConceptBudget()},
	)
	if err != nil {
		return model.CombinedConceptResponse{}, err
	}

	var combined model.CombinedConceptResponse
	if parseErr := jsonextract.Unmarshal(text, &combined); parseErr != nil {
		log.Warnf("概念 JSON 解析失败: %v, 原始输出: %s", parseErr, text)
		// 回退：并行发出两次单用途调用，与原有单用途接口同义
		combined, err = s.explainSeparately(ctx, concept, problemContext)
		if err != nil {
			return model.CombinedConceptResponse{}, err
		}
	}

	combined.Success = true
	s.cache.SetJSON(ctx, key, combined)
	return combined, nil
}

func (s *conceptService) explainSeparately(ctx context.Context, concept, problemContext string) (model.CombinedConceptResponse, error) {
	var combined model.CombinedConceptResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		explanation, err := s.Explain(gctx, concept, problemContext)
		combined.Explanation = explanation
		return err
	})
	g.Go(func() error {
		relation, err := s.Relate(gctx, concept, problemContext)
		combined.Relation = relation
		return err
	})
	if err := g.Wait(); err != nil {
		return model.CombinedConceptResponse{}, err
	}
	return combined, nil
}

// Explain 发起一次概念解释调用，返回模型的自由文本。
func (s *conceptService) Explain(ctx context.Context, concept, problemContext string) (string, error) {
	return s.llmClient.ChatMessages(ctx,
		[]llm.Message{llm.TextMessage(model.RoleUser, prompt.BuildConceptExplanation(concept, problemContext))},
		llm.CallOptions{MaxTokens: config.Conf.LLM.ExplanationBudget()},
	)
}

// Relate 发起一次概念关联调用，返回模型的自由文本。
func (s *conceptService) Relate(ctx context.Context, concept, problemContext string) (string, error) {
	return s.llmClient.ChatMessages(ctx,
		[]llm.Message{llm.TextMessage(model.RoleUser, prompt.BuildConceptRelation(concept, problemContext))},
		llm.CallOptions{MaxTokens: config.Conf.LLM.RelationBudget()},
	)
}
