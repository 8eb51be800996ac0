package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/quizpath/quizpath/internal/driver"
	"github.com/quizpath/quizpath/internal/model"
)

// ErrNotFound is returned when a write references a question or answer by
// text that was never stored. A silent no-op here would corrupt the session
// path without trace, so the store surfaces it.
var ErrNotFound = errors.New("not found")

// Store records a quiz session as a graph of Session, Question and Answer
// nodes. Questions and answers are content-addressed: text is the identity,
// so equal text anywhere in the system means the same node.
type Store struct {
	Driver driver.GraphDriver
}

func NewStore(d driver.GraphDriver) *Store {
	return &Store{Driver: d}
}

// SeedTopics upserts the session's selectable starting topics. The synthetic
// answer id is derived from (session id, index), so re-seeding the same list
// is idempotent and a topic never collides with a real answer of equal text.
func (s *Store) SeedTopics(ctx context.Context, sessionID string, topics []string) error {
	seeds := make([]interface{}, len(topics))
	for i, topic := range topics {
		seeds[i] = map[string]interface{}{
			"id":   fmt.Sprintf("%s-%d", sessionID, i),
			"text": topic,
		}
	}

	params := map[string]interface{}{
		"session_id": sessionID,
		"topics":     seeds,
	}

	if _, err := s.Driver.ExecuteQuery(ctx, driver.SeedTopicsQuery, params); err != nil {
		return fmt.Errorf("failed to seed topics: %w", err)
	}
	return nil
}

// StoreFirstQuestion links the session to its first real question and upserts
// the question's options. The correctness flag is last-write-wins per option
// text.
func (s *Store) StoreFirstQuestion(ctx context.Context, sessionID, questionText string, options []model.Option) error {
	params := map[string]interface{}{
		"session_id": sessionID,
		"question":   questionText,
		"options":    optionParams(options),
	}

	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveFirstQuestionQuery, params); err != nil {
		return fmt.Errorf("failed to store first question: %w", err)
	}
	return nil
}

// StoreSelectedAnswer records which option the player chose for a question and
// attaches the follow-up question with its options. Both the question and the
// chosen answer must already exist by text; otherwise ErrNotFound is returned
// and nothing is written.
func (s *Store) StoreSelectedAnswer(ctx context.Context, questionText, answerText, nextQuestionText string, nextOptions []model.Option) error {
	res, err := s.Driver.ExecuteQuery(ctx, driver.MatchQuestionAnswerQuery, map[string]interface{}{
		"question": questionText,
		"answer":   answerText,
	})
	if err != nil {
		return fmt.Errorf("failed to look up question and answer: %w", err)
	}
	if len(res.Records) == 0 {
		return fmt.Errorf("%w: question %q or answer %q", ErrNotFound, questionText, answerText)
	}

	params := map[string]interface{}{
		"question":      questionText,
		"answer":        answerText,
		"next_question": nextQuestionText,
		"options":       optionParams(nextOptions),
	}

	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveSelectedAnswerQuery, params); err != nil {
		return fmt.Errorf("failed to store selected answer: %w", err)
	}
	return nil
}

// IsCorrectOption reports whether the given answer is the correct option of
// the given question, as recorded by the latest write mentioning it.
func (s *Store) IsCorrectOption(ctx context.Context, questionText, answerText string) (bool, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.OptionCorrectQuery, map[string]interface{}{
		"question": questionText,
		"answer":   answerText,
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up option: %w", err)
	}
	if len(res.Records) == 0 {
		return false, fmt.Errorf("%w: option %q of question %q", ErrNotFound, answerText, questionText)
	}

	v, _ := res.Records[0].Get("isCorrect")
	correct, _ := v.(bool)
	return correct, nil
}

func optionParams(options []model.Option) []interface{} {
	params := make([]interface{}, len(options))
	for i, opt := range options {
		params[i] = map[string]interface{}{
			"text":      opt.Text,
			"isCorrect": opt.IsCorrect,
		}
	}
	return params
}
