package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/quizpath/quizpath/internal/driver"
	"github.com/quizpath/quizpath/internal/model"
)

const questionLabelLimit = 50

// GetGraph rebuilds the visualization graph for a session. A session that has
// not stored anything yet yields an empty graph, not an error. Before the
// first question is stored the view shows the home node with its topic seeds;
// afterwards it shows the question/answer path walked so far, including
// unanswered options and any follow-up already generated for them.
func (s *Store) GetGraph(ctx context.Context, sessionID string) (model.Graph, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.FirstQuestionQuery, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return model.Graph{}, fmt.Errorf("failed to resolve session phase: %w", err)
	}

	if len(res.Records) == 0 {
		return s.topicGraph(ctx, sessionID)
	}

	first, _ := stringValue(res.Records[0], "text")
	return s.quizGraph(ctx, first)
}

func (s *Store) topicGraph(ctx context.Context, sessionID string) (model.Graph, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.TopicPhaseQuery, map[string]interface{}{
		"session_id": sessionID,
	})
	if err != nil {
		return model.Graph{}, fmt.Errorf("failed to fetch topic seeds: %w", err)
	}

	b := newBuilder()
	if len(res.Records) == 0 {
		// Unknown session: valid empty state.
		return b.graph(), nil
	}

	b.addNode(model.NodeView{ID: sessionID, Label: "Home", Type: model.NodeHome})
	for _, rec := range res.Records {
		id, ok := stringValue(rec, "id")
		if !ok {
			continue // session exists but has no seeds yet
		}
		text, _ := stringValue(rec, "text")
		b.addNode(model.NodeView{ID: id, Label: text, Type: model.NodeAnswer, Topic: true})
		b.addLink(model.EdgeView{Source: sessionID, Target: id, Label: model.EdgeHasOption})
	}

	return b.graph(), nil
}

// quizGraph walks the session path with an explicit worklist: starting at the
// first question, each dequeued question contributes its options, its selected
// answer and the follow-up reachable through that answer. Only the selected
// branch is expanded further; follow-ups of unanswered options stay visible as
// leaf nodes so the traversal never crosses into another session's path.
func (s *Store) quizGraph(ctx context.Context, firstQuestion string) (model.Graph, error) {
	b := newBuilder()

	visited := map[string]bool{firstQuestion: true}
	queue := []string{firstQuestion}

	for len(queue) > 0 {
		question := queue[0]
		queue = queue[1:]

		b.addNode(model.NodeView{
			ID:    questionID(question),
			Label: questionLabel(question),
			Type:  model.NodeQuestion,
		})

		res, err := s.Driver.ExecuteQuery(ctx, driver.QuestionNeighborhoodQuery, map[string]interface{}{
			"question": question,
		})
		if err != nil {
			return model.Graph{}, fmt.Errorf("failed to fetch neighborhood of %q: %w", question, err)
		}

		for _, rec := range res.Records {
			selected, hasSelected := stringValue(rec, "selected")

			option, hasOption := stringValue(rec, "option")
			if hasOption {
				b.addNode(model.NodeView{
					ID:         answerID(option),
					Label:      option,
					Type:       model.NodeAnswer,
					IsCorrect:  boolValue(rec, "isCorrect"),
					IsSelected: hasSelected && option == selected,
				})
				b.addLink(model.EdgeView{
					Source: questionID(question),
					Target: answerID(option),
					Label:  model.EdgeHasOption,
				})
			}

			if hasSelected {
				b.addLink(model.EdgeView{
					Source: questionID(question),
					Target: answerID(selected),
					Label:  model.EdgeSelected,
					Style:  "bold",
				})
			}

			next, hasNext := stringValue(rec, "next")
			if hasOption && hasNext {
				b.addLink(model.EdgeView{
					Source: answerID(option),
					Target: questionID(next),
					Label:  model.EdgeNext,
				})
				if hasSelected && option == selected {
					if !visited[next] {
						visited[next] = true
						queue = append(queue, next)
					}
				} else {
					// Unanswered branch with a generated follow-up: show the
					// question but do not expand it.
					b.addNode(model.NodeView{
						ID:    questionID(next),
						Label: questionLabel(next),
						Type:  model.NodeQuestion,
					})
				}
			}
		}
	}

	return b.graph(), nil
}

func questionID(text string) string { return "q:" + text }
func answerID(text string) string   { return "a:" + text }

func questionLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= questionLabelLimit {
		return text
	}
	return string(runes[:questionLabelLimit]) + "…"
}

// builder accumulates nodes and links, deduplicating by identity. Repeated
// questions with equal text collapse into one visual node; a repeat emission
// of an answer node still contributes its selection flag, since the same
// answer text can be selected under one question and merely offered under
// another.
type builder struct {
	nodes []model.NodeView
	links []model.EdgeView
	seenN map[string]int
	seenL map[string]bool
}

func newBuilder() *builder {
	return &builder{
		nodes: []model.NodeView{},
		links: []model.EdgeView{},
		seenN: map[string]int{},
		seenL: map[string]bool{},
	}
}

func (b *builder) addNode(n model.NodeView) {
	if i, ok := b.seenN[n.ID]; ok {
		if n.IsSelected {
			b.nodes[i].IsSelected = true
		}
		return
	}
	b.seenN[n.ID] = len(b.nodes)
	b.nodes = append(b.nodes, n)
}

func (b *builder) addLink(l model.EdgeView) {
	key := l.Source + "\x00" + l.Label + "\x00" + l.Target
	if b.seenL[key] {
		return
	}
	b.seenL[key] = true
	b.links = append(b.links, l)
}

func (b *builder) graph() model.Graph {
	return model.Graph{Nodes: b.nodes, Links: b.links}
}

func stringValue(rec *neo4j.Record, key string) (string, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolValue(rec *neo4j.Record, key string) bool {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}
