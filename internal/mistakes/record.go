// Package mistakes keeps the append-only log of graded mistakes and
// persists it under a single key of the key-value store.
package mistakes

import (
	"fmt"
	"strings"

	"github.com/Dimaray2024/xiaona/internal/subject"
)

// Record is one stored mistake. Field names match the stored JSON.
type Record struct {
	// ID is "mistake_<13-digit unix millis>_<4-digit batch index>" and
	// sorts lexicographically in creation order.
	ID string `json:"id"`

	// HomeworkImages are the compressed photos of the grading batch this
	// record came from, as data URLs.
	HomeworkImages []string `json:"homeworkImages"`

	ProblemDescription string          `json:"problemDescription"`
	ReasonForError     string          `json:"reasonForError"`
	CorrectSteps       string          `json:"correctSteps"`
	Subject            subject.Subject `json:"subject"`
}

func (r Record) clone() Record {
	r.HomeworkImages = append([]string(nil), r.HomeworkImages...)
	return r
}

func formatID(stamp int64, index int) string {
	return fmt.Sprintf("mistake_%013d_%04d", stamp, index)
}

// Timestamp extracts the Unix millisecond timestamp encoded in a record id.
func Timestamp(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, "mistake_")
	if !ok {
		return 0, false
	}
	var stamp int64
	if _, err := fmt.Sscanf(rest, "%d_", &stamp); err != nil {
		return 0, false
	}
	return stamp, true
}
