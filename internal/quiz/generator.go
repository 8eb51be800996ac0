package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/quizpath/quizpath/internal/common"
	"github.com/quizpath/quizpath/internal/config"
	"github.com/quizpath/quizpath/internal/llm"
	"github.com/quizpath/quizpath/internal/model"
)

const defaultNextTopicPrompt = `Ты создаешь уникальный путь знаний для игрока. У игрока предыдущий ответ был: "%s".
Придумай одну новую, логически связанную тему, но из другой области знаний.
Это должен быть неочевидный, интересный ассоциативный прыжок для расширения кругозора игрока.

Примеры таких прыжков:
- Космос -> Греческая мифология (через имена планет)
- История -> Кулинария (через традиционные блюда эпохи)

Избегай повторного использования этих тем: %s.

Верни только одну тему без пояснений.`

const defaultQuestionPrompt = `Ты генератор интеллектуальных викторин. Сгенерируй интересный, краткий вопрос на тему "%s" с 4 вариантами ответа.

Формат вывода должен строго соответствовать следующей JSON-структуре:

{
  "question": "строка, сам вопрос",
  "options": [
    {"text": "вариант ответа 1", "isCorrect": true},
    {"text": "вариант ответа 2", "isCorrect": false},
    {"text": "вариант ответа 3", "isCorrect": false},
    {"text": "вариант ответа 4", "isCorrect": false}
  ]
}

Только один из вариантов должен иметь "isCorrect": true.
Правильный ответ должен быть связан с темой, но не должен повторяться из следующего списка: %s.
Варианты ответов должны быть правдоподобны, но только один правильный. Без пояснений и лишнего текста.`

// Generator produces quiz questions through an LLM in two steps: hop to a new
// associatively linked topic, then generate a four-option question on it.
type Generator struct {
	LLM     llm.Client
	Prompts config.QuizPrompts
}

func NewGenerator(client llm.Client, prompts config.QuizPrompts) *Generator {
	if prompts.NextTopic == "" {
		prompts.NextTopic = defaultNextTopicPrompt
	}
	if prompts.Question == "" {
		prompts.Question = defaultQuestionPrompt
	}
	return &Generator{
		LLM:     client,
		Prompts: prompts,
	}
}

// FirstQuestion generates the opening question for a player-picked topic.
func (g *Generator) FirstQuestion(ctx context.Context, topic string) (model.Question, error) {
	return g.questionForTopic(ctx, topic, nil)
}

// NextQuestion hops from the player's previous answer to a fresh topic and
// generates a question on it. Topics in avoid are excluded from both steps.
func (g *Generator) NextQuestion(ctx context.Context, previousAnswer string, avoid []string) (model.Question, error) {
	prompt := fmt.Sprintf(g.Prompts.NextTopic, previousAnswer, strings.Join(avoid, ", "))

	topic, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to generate next topic: %w", err)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return model.Question{}, fmt.Errorf("generator returned empty topic")
	}

	return g.questionForTopic(ctx, topic, avoid)
}

func (g *Generator) questionForTopic(ctx context.Context, topic string, avoid []string) (model.Question, error) {
	prompt := fmt.Sprintf(g.Prompts.Question, topic, strings.Join(avoid, ", "))

	response, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to generate question: %w", err)
	}

	question, err := common.ParseJSON[model.Question](response)
	if err != nil {
		return model.Question{}, fmt.Errorf("failed to parse question: %w", err)
	}
	if question.Question == "" || len(question.Options) == 0 {
		return model.Question{}, fmt.Errorf("generator returned incomplete question: %q", response)
	}

	return question, nil
}

// Fallback is the fixed degraded question substituted when generation fails.
// No option is marked correct.
func Fallback(topic string) model.Question {
	return model.Question{
		Question: fmt.Sprintf("Что-то пошло не так при генерации вопроса по теме '%s'.", topic),
		Options: []model.Option{
			{Text: "A"},
			{Text: "B"},
			{Text: "C"},
			{Text: "D"},
		},
	}
}
