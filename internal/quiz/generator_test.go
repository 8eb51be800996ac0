package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpath/quizpath/internal/config"
)

type MockLLM struct {
	Prompts       []string
	Response      string
	ResponseQueue []string
	Err           error
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
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

func TestFirstQuestion(t *testing.T) {
	mockLLM := &MockLLM{Response: questionJSON}
	g := NewGenerator(mockLLM, config.QuizPrompts{})

	q, err := g.FirstQuestion(context.Background(), "Космос")

	require.NoError(t, err)
	assert.Equal(t, "Кто первым высадился на Луне?", q.Question)
	require.Len(t, q.Options, 4)
	assert.True(t, q.Options[0].IsCorrect)
	require.Len(t, mockLLM.Prompts, 1)
	assert.Contains(t, mockLLM.Prompts[0], "Космос")
}

func TestNextQuestionTwoStepChain(t *testing.T) {
	mockLLM := &MockLLM{
		ResponseQueue: []string{
			"Греческая мифология\n", // topic hop
			questionJSON,
		},
	}
	g := NewGenerator(mockLLM, config.QuizPrompts{})

	q, err := g.NextQuestion(context.Background(), "Марс", []string{"Космос", "История"})

	require.NoError(t, err)
	assert.Equal(t, "Кто первым высадился на Луне?", q.Question)

	require.Len(t, mockLLM.Prompts, 2)
	assert.Contains(t, mockLLM.Prompts[0], "Марс")
	assert.Contains(t, mockLLM.Prompts[0], "Космос, История")
	assert.Contains(t, mockLLM.Prompts[1], "Греческая мифология")
	assert.Contains(t, mockLLM.Prompts[1], "Космос, История")
}

func TestNextQuestionGenerationError(t *testing.T) {
	mockLLM := &MockLLM{Err: errors.New("rate limited")}
	g := NewGenerator(mockLLM, config.QuizPrompts{})

	_, err := g.NextQuestion(context.Background(), "Марс", nil)
	assert.Error(t, err)
}

func TestQuestionMalformedResponse(t *testing.T) {
	mockLLM := &MockLLM{Response: "Извини, я не могу сгенерировать вопрос."}
	g := NewGenerator(mockLLM, config.QuizPrompts{})

	_, err := g.FirstQuestion(context.Background(), "Космос")
	assert.Error(t, err)
}

func TestQuestionIncompleteResponse(t *testing.T) {
	mockLLM := &MockLLM{Response: `{"question": "", "options": []}`}
	g := NewGenerator(mockLLM, config.QuizPrompts{})

	_, err := g.FirstQuestion(context.Background(), "Космос")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
}

func TestFallback(t *testing.T) {
	q := Fallback("Физика")

	assert.Contains(t, q.Question, "Физика")
	require.Len(t, q.Options, 4)
	for _, opt := range q.Options {
		assert.False(t, opt.IsCorrect)
	}
}
