package session

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one step of a session's path: the topic the player was on and the
// answer they chose for it.
type Entry struct {
	Topic        string `json:"topic"`
	ChosenAnswer string `json:"chosen_answer,omitempty"`
}

// Cache is the in-memory path ledger feeding "avoid" lists to question
// generation. It is not durable and not shared with the graph store; losing it
// only resets avoidance, never correctness.
type Cache struct {
	mu       sync.Mutex
	sessions map[string][]Entry
}

func NewCache() *Cache {
	return &Cache{
		sessions: make(map[string][]Entry),
	}
}

// Create allocates a fresh session id seeded with the starting topic.
func (c *Cache) Create(topic string) string {
	id := uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[id] = []Entry{{Topic: topic}}
	return id
}

// Append records a (topic, chosen answer) step. Unknown session ids are a
// no-op.
func (c *Cache) Append(id, topic, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; !ok {
		return
	}
	c.sessions[id] = append(c.sessions[id], Entry{Topic: topic, ChosenAnswer: answer})
}

// LastAnswers returns the most recent n chosen answers, oldest first.
func (c *Cache) LastAnswers(id string, n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.sessions[id]
	var answers []string
	for _, e := range entries {
		if e.ChosenAnswer != "" {
			answers = append(answers, e.ChosenAnswer)
		}
	}
	if n > 0 && len(answers) > n {
		answers = answers[len(answers)-n:]
	}
	return answers
}

// Get returns the full path of a session.
func (c *Cache) Get(id string) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.sessions[id]
	if !ok {
		return nil, false
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, true
}
