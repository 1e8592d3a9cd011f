// Package subject defines the closed set of school subjects a mistake can
// belong to.
package subject

import "fmt"

// Subject is one of 语文, 数学, 英语, 其他.
type Subject string

const (
	Chinese Subject = "语文"
	Math    Subject = "数学"
	English Subject = "英语"
	Other   Subject = "其他"
)

// All lists the subjects in display order.
var All = []Subject{Chinese, Math, English, Other}

// Valid reports whether s is one of the four subjects.
func (s Subject) Valid() bool {
	switch s {
	case Chinese, Math, English, Other:
		return true
	}
	return false
}

func (s Subject) String() string { return string(s) }

// Parse accepts only the four subject names.
func Parse(s string) (Subject, error) {
	sub := Subject(s)
	if !sub.Valid() {
		return "", fmt.Errorf("unknown subject %q", s)
	}
	return sub, nil
}

// Normalize maps anything outside the closed set to Other.
func Normalize(s Subject) Subject {
	if s.Valid() {
		return s
	}
	return Other
}

// EnumValues returns the subjects as a JSON Schema enum.
func EnumValues() []any {
	out := make([]any, len(All))
	for i, s := range All {
		out[i] = string(s)
	}
	return out
}
