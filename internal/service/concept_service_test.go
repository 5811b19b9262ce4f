package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-compass-go/internal/repository"
	"learning-compass-go/pkg/llm"
)

func TestExplainCombined(t *testing.T) {
	var calls int32
	svc := NewConceptService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			atomic.AddInt32(&calls, 1)
			return `{"explanation":"Velocity is speed with direction.","relation":"It determines the range here."}`, nil
		},
	}, repository.NopCache{})

	combined, err := svc.ExplainCombined(context.Background(), "velocity", "a ball is thrown")
	require.NoError(t, err)
	assert.Equal(t, "Velocity is speed with direction.", combined.Explanation)
	assert.Equal(t, "It determines the range here.", combined.Relation)
	assert.True(t, combined.Success)
	assert.Equal(t, int32(1), calls)
}

func TestExplainCombinedFallsBackToSeparateCalls(t *testing.T) {
	// 合并调用（预算 1000）返回不合规输出，回退到并行的单用途调用
	svc := NewConceptService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			switch opts.MaxTokens {
			case 500:
				return "An explanation.", nil
			case 300:
				return "A relation.", nil
			default:
				return "Sure! Here is the explanation: ...", nil
			}
		},
	}, repository.NopCache{})

	combined, err := svc.ExplainCombined(context.Background(), "velocity", "a ball is thrown")
	require.NoError(t, err)
	assert.Equal(t, "An explanation.", combined.Explanation)
	assert.Equal(t, "A relation.", combined.Relation)
	assert.True(t, combined.Success)
}

func TestExplainCombinedUpstreamError(t *testing.T) {
	svc := NewConceptService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			return "", errors.New("upstream down")
		},
	}, repository.NopCache{})

	_, err := svc.ExplainCombined(context.Background(), "velocity", "ctx")
	assert.Error(t, err)
}

func TestExplainCombinedCaches(t *testing.T) {
	var calls int32
	cache := newMapCache()
	svc := NewConceptService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			atomic.AddInt32(&calls, 1)
			return `{"explanation":"e","relation":"r"}`, nil
		},
	}, cache)

	first, err := svc.ExplainCombined(context.Background(), "velocity", "ctx")
	require.NoError(t, err)
	second, err := svc.ExplainCombined(context.Background(), "velocity", "ctx")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls, "second lookup must be served from cache")

	// 不同的问题上下文是不同的缓存条目
	_, err = svc.ExplainCombined(context.Background(), "velocity", "other")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}

func TestExplainAndRelate(t *testing.T) {
	svc := NewConceptService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			text, _ := messages[0].Content.(string)
			assert.Contains(t, text, "momentum")
			if opts.MaxTokens == 500 {
				return "momentum explained", nil
			}
			return "momentum related", nil
		},
	}, repository.NopCache{})

	explanation, err := svc.Explain(context.Background(), "momentum", "collision problem")
	require.NoError(t, err)
	assert.Equal(t, "momentum explained", explanation)

	relation, err := svc.Relate(context.Background(), "momentum", "collision problem")
	require.NoError(t, err)
	assert.Equal(t, "momentum related", relation)
}
