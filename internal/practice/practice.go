// Package practice tracks which mistakes the student picked and turns them
// into a fresh set of practice problems.
package practice

import (
	"context"
	"fmt"
	"slices"

	"github.com/Dimaray2024/xiaona/internal/homework"
	"github.com/Dimaray2024/xiaona/internal/mistakes"
)

// ErrEmptySelection is returned when nothing usable is selected.
var ErrEmptySelection = &homework.ValidationError{Msg: "请先选择需要生成练习题的错题。"}

// Selection is a set of mistake ids, kept in the order they were added.
// The zero value is empty and ready to use. It is not safe for concurrent
// use.
type Selection struct {
	ids []string
}

// Toggle adds id if absent and removes it otherwise.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return
	}
	s.ids = append(s.ids, id)
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in toggle order.
func (s *Selection) IDs() []string { return slices.Clone(s.ids) }

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection { return &Selection{ids: slices.Clone(s.ids)} }

// Clear empties the selection.
func (s *Selection) Clear() { s.ids = nil }

// Generator produces practice problems from problem descriptions.
type Generator interface {
	GeneratePractice(ctx context.Context, problems []string) (string, error)
}

// Flow resolves selections and asks the generator for practice.
type Flow struct {
	gen Generator
}

// NewFlow returns a Flow backed by gen.
func NewFlow(gen Generator) *Flow {
	return &Flow{gen: gen}
}

// Resolve returns the descriptions of the selected records in collection
// order. Selected ids missing from all are skipped.
func Resolve(sel *Selection, all []mistakes.Record) []string {
	var out []string
	for _, r := range all {
		if sel.Contains(r.ID) {
			out = append(out, r.ProblemDescription)
		}
	}
	return out
}

// Generate asks for practice problems similar to the selected mistakes.
// The selection is left as is.
func (f *Flow) Generate(ctx context.Context, sel *Selection, all []mistakes.Record) (string, error) {
	if sel == nil || sel.Len() == 0 {
		return "", ErrEmptySelection
	}
	problems := Resolve(sel, all)
	if len(problems) == 0 {
		return "", ErrEmptySelection
	}

	out, err := f.gen.GeneratePractice(ctx, problems)
	if err != nil {
		return "", fmt.Errorf("practice: %w", err)
	}
	return out, nil
}
