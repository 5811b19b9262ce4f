package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-compass-go/internal/model"
	"learning-compass-go/internal/prompt"
	"learning-compass-go/pkg/llm"
	"learning-compass-go/pkg/sse"
)

func TestAnalyzeQuestion(t *testing.T) {
	var gotOpts llm.CallOptions
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			gotOpts = opts
			return "```json\n{\"title\":\"Free Fall\",\"quantities\":[\"h = 20 m\"],\"goal\":\"find t\",\"problemSummary\":\"a stone is dropped\",\"formulas\":[{\"title\":\"Kinematics\",\"formula\":\"h = (1/2)gt^2\",\"variables\":[]}]}\n```", nil
		},
	})

	analysis := svc.AnalyzeQuestion(context.Background(), "a stone is dropped from 20 m")
	assert.Equal(t, "Free Fall", analysis.Title)
	assert.Equal(t, []string{"h = 20 m"}, analysis.Quantities)
	require.NotNil(t, analysis.Goal)
	assert.Equal(t, "find t", *analysis.Goal)
	require.Len(t, analysis.Formulas, 1)
	assert.Equal(t, "Kinematics", analysis.Formulas[0].Title)
	assert.Equal(t, 2500, gotOpts.MaxTokens)
}

func TestAnalyzeQuestionFallsBackOnBadJSON(t *testing.T) {
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			return "I cannot produce JSON right now.", nil
		},
	})
	assert.Equal(t, model.PlaceholderAnalysis(), svc.AnalyzeQuestion(context.Background(), "hi"))
}

func TestAnalyzeQuestionFallsBackOnUpstreamError(t *testing.T) {
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			return "", errors.New("upstream down")
		},
	})
	assert.Equal(t, model.PlaceholderAnalysis(), svc.AnalyzeQuestion(context.Background(), "hi"))
}

func TestAnalyzeQuestionNormalizesNilSlices(t *testing.T) {
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			return `{"title":"X","problemSummary":"y"}`, nil
		},
	})
	analysis := svc.AnalyzeQuestion(context.Background(), "hi")
	assert.NotNil(t, analysis.Quantities)
	assert.NotNil(t, analysis.Formulas)
	assert.Nil(t, analysis.Goal)
}

func TestRespondComposesHistory(t *testing.T) {
	var gotMessages []llm.Message
	var gotOpts llm.CallOptions
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			gotMessages, gotOpts = messages, opts
			return "Great question!", nil
		},
	})

	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "a ball is thrown"},
		{Role: model.RoleAssistant, Content: "Let's break it down."},
	}
	reply, err := svc.Respond(context.Background(), "what about air resistance", history, nil)
	require.NoError(t, err)
	assert.Equal(t, "Great question!", reply)

	assert.Equal(t, prompt.ChatTutor, gotOpts.System)
	require.Len(t, gotMessages, 3)
	assert.Equal(t, model.RoleUser, gotMessages[0].Role)
	assert.Equal(t, model.RoleAssistant, gotMessages[1].Role)
	assert.Equal(t, model.RoleUser, gotMessages[2].Role)
	assert.Equal(t, "what about air resistance", gotMessages[2].Content)
}

func TestRespondWithImageDefaultsQuestion(t *testing.T) {
	var gotMessages []llm.Message
	svc := NewChatService(&stubLLM{
		chatFn: func(messages []llm.Message, opts llm.CallOptions) (string, error) {
			gotMessages = messages
			return "ok", nil
		},
	})

	_, err := svc.Respond(context.Background(), "", nil,
		[]model.ImageAttachment{{Type: "image/png", Data: "aGVsbG8="}})
	require.NoError(t, err)
	require.Len(t, gotMessages, 1)
	// 图片消息是多模态分段，不是纯字符串内容
	_, isString := gotMessages[0].Content.(string)
	assert.False(t, isString)
}

func TestStreamRespond(t *testing.T) {
	svc := NewChatService(&stubLLM{
		streamFn: func(messages []llm.Message, opts llm.CallOptions, onDelta llm.DeltaFunc) error {
			for _, d := range []string{"Hel", "lo"} {
				if err := onDelta(d); err != nil {
					return err
				}
			}
			return nil
		},
	})

	rec := httptest.NewRecorder()
	err := svc.StreamRespond(context.Background(), "hi", nil, nil, sse.NewWriter(rec))
	require.NoError(t, err)
	assert.Equal(t,
		"data: {\"type\":\"content\",\"text\":\"Hel\"}\n\n"+
			"data: {\"type\":\"content\",\"text\":\"lo\"}\n\n"+
			"data: {\"type\":\"end\"}\n\n",
		rec.Body.String())
}

func TestStreamRespondErrorWritesNoTerminal(t *testing.T) {
	svc := NewChatService(&stubLLM{
		streamFn: func(messages []llm.Message, opts llm.CallOptions, onDelta llm.DeltaFunc) error {
			_ = onDelta("partial")
			return errors.New("upstream reset")
		},
	})

	rec := httptest.NewRecorder()
	w := sse.NewWriter(rec)
	err := svc.StreamRespond(context.Background(), "hi", nil, nil, w)
	require.Error(t, err)
	// 终止信封留给调用方写，这样错误消息由处理器统一决定
	assert.Equal(t, "data: {\"type\":\"content\",\"text\":\"partial\"}\n\n", rec.Body.String())
	require.NoError(t, w.WriteError("Failed to process message"))
	assert.Contains(t, rec.Body.String(), `{"type":"error","message":"Failed to process message"}`)
}
