package model

// Node types in the visualization graph.
const (
	NodeHome     = "home"
	NodeQuestion = "question"
	NodeAnswer   = "answer"
)

// Edge labels in the visualization graph.
const (
	EdgeHasOption = "HAS_OPTION"
	EdgeSelected  = "SELECTED"
	EdgeNext      = "NEXT"
)

type NodeView struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Type       string `json:"type"`
	Topic      bool   `json:"topic,omitempty"`
	IsCorrect  bool   `json:"isCorrect,omitempty"`
	IsSelected bool   `json:"isSelected,omitempty"`
}

type EdgeView struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Style  string `json:"style,omitempty"`
}

// Graph is the session view returned to the frontend. Nodes and links are
// lists for JSON convenience; consumers should treat them as sets keyed by id.
type Graph struct {
	Nodes []NodeView `json:"nodes"`
	Links []EdgeView `json:"links"`
}
