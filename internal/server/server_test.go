package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpath/quizpath/internal/config"
	"github.com/quizpath/quizpath/internal/driver"
	"github.com/quizpath/quizpath/internal/graph"
	"github.com/quizpath/quizpath/internal/quiz"
)

type mockDriver struct {
	Handler func(query string, params map[string]interface{}) (neo4j.EagerResult, error)
}

func (m *mockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	if m.Handler != nil {
		return m.Handler(query, params)
	}
	return neo4j.EagerResult{}, nil
}

func (m *mockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *mockDriver) Close(ctx context.Context) error        { return nil }

type mockLLM struct {
	ResponseQueue []string
	Err           error
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) == 0 {
		return "", errors.New("no queued response")
	}
	resp := m.ResponseQueue[0]
	m.ResponseQueue = m.ResponseQueue[1:]
	return resp, nil
}

const questionJSON = `{
	"question": "Кто первым высадился на Луне?",
	"options": [
		{"text": "Нил Армстронг", "isCorrect": true},
		{"text": "Юрий Гагарин", "isCorrect": false},
		{"text": "Базз Олдрин", "isCorrect": false},
		{"text": "Майкл Коллинз", "isCorrect": false}
	]
}`

func newTestServer(d *mockDriver, l *mockLLM) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	s := New(graph.NewStore(d), quiz.NewGenerator(l, config.QuizPrompts{}), config.QuizConfig{})
	return s, s.SetupRouter()
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStartGame(t *testing.T) {
	var seeded bool
	d := &mockDriver{Handler: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		if query == driver.SeedTopicsQuery {
			seeded = true
		}
		return neo4j.EagerResult{}, nil
	}}
	_, r := newTestServer(d, &mockLLM{})

	w := get(r, "/start")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		SessionID string   `json:"session_id"`
		Topics    []string `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, defaultTopics, resp.Topics)
	assert.True(t, seeded)
}

func TestFirstQuestionFallbackOnGenerationFailure(t *testing.T) {
	var storedQuestion string
	d := &mockDriver{Handler: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		if query == driver.SaveFirstQuestionQuery {
			storedQuestion, _ = params["question"].(string)
		}
		return neo4j.EagerResult{}, nil
	}}
	_, r := newTestServer(d, &mockLLM{Err: errors.New("model overloaded")})

	w := postJSON(r, "/first_question", gin.H{"session_id": "sess-1", "topic": "Физика"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, storedQuestion, "Физика")

	var resp struct {
		Question string `json:"question"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Question, "Физика")
}

func TestAnswerHappyPath(t *testing.T) {
	d := &mockDriver{Handler: func(query string, params map[string]interface{}) (neo4j.EagerResult, error) {
		switch query {
		case driver.OptionCorrectQuery:
			return neo4j.EagerResult{Records: []*neo4j.Record{
				{Keys: []string{"isCorrect"}, Values: []interface{}{true}},
			}}, nil
		case driver.MatchQuestionAnswerQuery:
			return neo4j.EagerResult{Records: []*neo4j.Record{
				{Keys: []string{"question", "answer"}, Values: []interface{}{"Q1", "A"}},
			}}, nil
		}
		return neo4j.EagerResult{}, nil
	}}
	l := &mockLLM{ResponseQueue: []string{"Греческая мифология", questionJSON}}
	_, r := newTestServer(d, l)

	w := postJSON(r, "/answer", gin.H{
		"session_id":    "sess-1",
		"question_text": "Q1",
		"chosen_answer": "A",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Question string `json:"question"`
		Correct  bool   `json:"correct"`
		Event    struct {
			Kind string `json:"event"`
		} `json:"event"`
		Ship struct {
			Fuel  int `json:"fuel"`
			Score int `json:"score"`
		} `json:"ship"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Кто первым высадился на Луне?", resp.Question)
	assert.True(t, resp.Correct)
	assert.Equal(t, "resources_found", resp.Event.Kind)
	assert.Equal(t, 100, resp.Ship.Fuel)
	assert.Equal(t, 100, resp.Ship.Score)
}

func TestAnswerUnknownQuestionIsNotFound(t *testing.T) {
	// Neither the correctness check nor the existence lookup matches: the
	// store must surface NotFound and the handler maps it to 404.
	d := &mockDriver{}
	l := &mockLLM{ResponseQueue: []string{"Тема", questionJSON}}
	_, r := newTestServer(d, l)

	w := postJSON(r, "/answer", gin.H{
		"session_id":    "sess-1",
		"question_text": "never stored",
		"chosen_answer": "A",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGraphUnknownSession(t *testing.T) {
	_, r := newTestServer(&mockDriver{}, &mockLLM{})

	w := get(r, "/graph/nonexistent")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nodes": [], "links": []}`, w.Body.String())
}

func TestShipStatus(t *testing.T) {
	_, r := newTestServer(&mockDriver{}, &mockLLM{})

	w := get(r, "/ship/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	start := get(r, "/start")
	var resp struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(start.Body.Bytes(), &resp))

	w = get(r, "/ship/"+resp.SessionID)
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		Fuel      int            `json:"fuel"`
		Score     int            `json:"score"`
		Resources map[string]int `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, 100, state.Fuel)
	assert.Zero(t, state.Score)
	assert.Len(t, state.Resources, 3)
}
