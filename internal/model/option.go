package model

// Option is one selectable answer of a multiple-choice question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a generated quiz question with its answer options.
type Question struct {
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}
