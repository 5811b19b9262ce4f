package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learning-compass-go/internal/model"
	"learning-compass-go/pkg/sse"
)

// eventLog 按到达顺序记录流回调，用于断言事件序列与恰好一次语义。
type eventLog struct {
	kinds    []string
	contents []string
	analyses []model.QuestionAnalysis
	errors   []string
}

func (el *eventLog) callbacks() sse.Callbacks {
	return sse.Callbacks{
		OnContent: func(text string) {
			el.kinds = append(el.kinds, "content")
			el.contents = append(el.contents, text)
		},
		OnAnalysis: func(a model.QuestionAnalysis) {
			el.kinds = append(el.kinds, "analysis")
			el.analyses = append(el.analyses, a)
		},
		OnEnd: func() { el.kinds = append(el.kinds, "end") },
		OnError: func(msg string) {
			el.kinds = append(el.kinds, "error")
			el.errors = append(el.errors, msg)
		},
	}
}

func (el *eventLog) terminals() int {
	n := 0
	for _, k := range el.kinds {
		if k == "end" || k == "error" {
			n++
		}
	}
	return n
}

func sseHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, p := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", p)
		}
	}
}

func TestStreamInitialMessage(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"type":"analysis","analysis":{"title":"Free Fall","quantities":[],"goal":null,"problemSummary":"s","formulas":[]}}`,
		`{"type":"content","text":"Hel"}`,
		`{"type":"content","text":"lo"}`,
		`{"type":"end"}`,
	))
	defer srv.Close()

	var el eventLog
	New(srv.URL).SendInitialMessageStream(context.Background(), "hi", el.callbacks())

	assert.Equal(t, []string{"analysis", "content", "content", "end"}, el.kinds)
	assert.Equal(t, []string{"Hel", "lo"}, el.contents)
	require.Len(t, el.analyses, 1)
	assert.Equal(t, "Free Fall", el.analyses[0].Title)
	assert.Equal(t, 1, el.terminals())
}

func TestStreamStopsAtTerminalEnvelope(t *testing.T) {
	// 终止信封之后同一响应里还有内容：一律不再处理
	srv := httptest.NewServer(sseHandler(
		`{"type":"content","text":"before"}`,
		`{"type":"end"}`,
		`{"type":"content","text":"after"}`,
		`{"type":"end"}`,
	))
	defer srv.Close()

	var el eventLog
	New(srv.URL).SendMessageStream(context.Background(), "hi", nil, el.callbacks())

	assert.Equal(t, []string{"content", "end"}, el.kinds)
	assert.Equal(t, []string{"before"}, el.contents)
	assert.Equal(t, 1, el.terminals())
}

func TestStreamErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"type":"content","text":"partial"}`,
		`{"type":"error","message":"Failed to process message"}`,
	))
	defer srv.Close()

	var el eventLog
	New(srv.URL).SendMessageStream(context.Background(), "hi", nil, el.callbacks())

	assert.Equal(t, []string{"content", "error"}, el.kinds)
	assert.Equal(t, []string{"Failed to process message"}, el.errors)
	assert.Equal(t, 1, el.terminals())
}

func TestStreamTruncated(t *testing.T) {
	// 流在没有终止信封的情况下结束
	srv := httptest.NewServer(sseHandler(`{"type":"content","text":"partial"}`))
	defer srv.Close()

	var el eventLog
	New(srv.URL).SendMessageStream(context.Background(), "hi", nil, el.callbacks())

	assert.Equal(t, []string{"content", "error"}, el.kinds)
	assert.Equal(t, []string{"Stream ended unexpectedly."}, el.errors)
	assert.Equal(t, 1, el.terminals())
}

func TestStreamNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"Message is required"}`)
	}))
	defer srv.Close()

	var el eventLog
	New(srv.URL).SendInitialMessageStream(context.Background(), "", el.callbacks())

	assert.Equal(t, []string{"error"}, el.kinds)
	assert.Equal(t, []string{"Message is required"}, el.errors)
}

func TestStreamUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	var el eventLog
	New(srv.URL).SendMessageStream(context.Background(), "hi", nil, el.callbacks())

	assert.Equal(t, []string{"error"}, el.kinds)
	assert.Equal(t, []string{ErrMsgUnreachable}, el.errors)
}

func TestSendInitialMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/initial", r.URL.Path)
		fmt.Fprint(w, `{"message":"Let's start.","analysis":{"title":"T","quantities":[],"goal":null,"problemSummary":"s","formulas":[]},"success":true}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL).SendInitialMessage(context.Background(), "a stone is dropped")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Let's start.", resp.Message)
	assert.Equal(t, "T", resp.Analysis.Title)
}

func TestPostErrorMapping(t *testing.T) {
	t.Run("server error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"Failed to explain concept"}`)
		}))
		defer srv.Close()

		_, err := New(srv.URL).ExplainConcept(context.Background(), "velocity", "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Failed to explain concept", apiErr.Message)
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	})

	t.Run("empty error body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := New(srv.URL).GenerateFormula(context.Background(), "x", "")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Request failed with status 502", apiErr.Message)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := New(srv.URL).SendMessage(context.Background(), "hi", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, ErrMsgUnreachable, apiErr.Message)
	})
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/health", r.URL.Path)
		fmt.Fprint(w, `{"status":"healthy","timestamp":"2026-01-01T00:00:00Z"}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
}

func TestFormulaCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/formulas/categories", r.URL.Path)
		fmt.Fprint(w, `{"categories":[{"id":"kinematic-equations","name":"Kinematic Equations"}],"success":true}`)
	}))
	defer srv.Close()

	categories, err := New(srv.URL).FormulaCategories(context.Background(), []string{"Kinematic Equations"}, "")
	require.NoError(t, err)
	assert.Equal(t, []model.FormulaCategory{{ID: "kinematic-equations", Name: "Kinematic Equations"}}, categories)
}
