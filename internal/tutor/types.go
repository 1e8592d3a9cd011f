package tutor

import (
	"github.com/Dimaray2024/xiaona/internal/llm"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

// StructuredAnalysis is a titled, step-by-step explanation.
type StructuredAnalysis struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section is one titled step of an analysis.
type Section struct {
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

// GradingResponse is the result of grading one batch of homework photos.
type GradingResponse struct {
	IsBlank  bool            `json:"isBlank"`
	Mistakes []GradedMistake `json:"mistakes"`
}

// GradedMistake is one incorrect item found while grading.
type GradedMistake struct {
	ProblemDescription string          `json:"problemDescription"`
	ReasonForError     string          `json:"reasonForError"`
	CorrectSteps       string          `json:"correctSteps"`
	Subject            subject.Subject `json:"subject"`
}

// Turn is a prior chat message sent as history. Only text is replayed.
type Turn struct {
	Role llm.Role
	Text string
}
