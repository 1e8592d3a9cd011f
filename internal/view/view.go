// Package view derives the filtered, sorted and grouped presentation of the
// mistake collection. Everything here is pure: the input slice is never
// modified and nothing is cached.
package view

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

// SortOrder selects how a projection is ordered.
type SortOrder string

const (
	DateDesc SortOrder = "date-desc"
	DateAsc  SortOrder = "date-asc"
	NameAsc  SortOrder = "name-asc"
	NameDesc SortOrder = "name-desc"
)

// Filter is a subject or FilterAll.
type Filter string

// FilterAll keeps every record.
const FilterAll Filter = "all"

// Option pairs a value with its display label.
type Option[T ~string] struct {
	Value T
	Label string
}

// SortOrders lists the sort orders in display order.
var SortOrders = []Option[SortOrder]{
	{DateDesc, "添加日期 (最新)"},
	{DateAsc, "添加日期 (最旧)"},
	{NameAsc, "题目名称 (A-Z)"},
	{NameDesc, "题目名称 (Z-A)"},
}

// Filters lists the subject filters in display order.
var Filters = []Option[Filter]{
	{FilterAll, "所有学科"},
	{Filter(subject.Chinese), "语文"},
	{Filter(subject.Math), "数学"},
	{Filter(subject.English), "英语"},
	{Filter(subject.Other), "其他"},
}

// ParseSortOrder accepts a sort order value. Empty means DateDesc.
func ParseSortOrder(s string) (SortOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateDesc, nil
	}
	for _, o := range SortOrders {
		if string(o.Value) == s {
			return o.Value, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q (want date-desc, date-asc, name-asc or name-desc)", s)
}

// ParseFilter accepts "all" or one of the four subjects. Empty means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	sub, err := subject.Parse(s)
	if err != nil {
		return "", err
	}
	return Filter(sub), nil
}

// Label returns the display label of o.
func (o SortOrder) Label() string { return label(SortOrders, o) }

// Label returns the display label of f.
func (f Filter) Label() string { return label(Filters, f) }

func label[T ~string](opts []Option[T], v T) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return string(v)
}

// Projector orders names with a locale-aware collation.
type Projector struct {
	// Locale is a BCP 47 tag; empty or invalid falls back to Chinese.
	Locale string
}

// Project is Projector{}.Project.
func Project(all []mistakes.Record, filter Filter, order SortOrder) []mistakes.Record {
	return Projector{}.Project(all, filter, order)
}

// Project filters all by subject and sorts the result. Sorting is stable,
// and the descending orders are the exact reverse of their ascending
// counterparts. Unknown orders fall back to DateDesc.
func (p Projector) Project(all []mistakes.Record, filter Filter, order SortOrder) []mistakes.Record {
	out := make([]mistakes.Record, 0, len(all))
	for _, r := range all {
		if filter == FilterAll || filter == "" || Filter(r.Subject) == filter {
			out = append(out, r)
		}
	}

	switch order {
	case NameAsc, NameDesc:
		// collate.Collator keeps internal buffers and is not safe to share.
		c := collate.New(p.tag())
		slices.SortStableFunc(out, func(a, b mistakes.Record) int {
			return c.CompareString(a.ProblemDescription, b.ProblemDescription)
		})
	default:
		slices.SortStableFunc(out, func(a, b mistakes.Record) int {
			return strings.Compare(a.ID, b.ID)
		})
	}

	if order != DateAsc && order != NameAsc {
		slices.Reverse(out)
	}
	return out
}

func (p Projector) tag() language.Tag {
	if p.Locale == "" {
		return language.Chinese
	}
	tag, err := language.Parse(p.Locale)
	if err != nil {
		return language.Chinese
	}
	return tag
}

// Group is one subject bucket of a projection.
type Group struct {
	Subject subject.Subject
	Records []mistakes.Record
}

// GroupBySubject buckets projected by subject. Buckets appear in the order
// their first record appears, records keep their projected order, and
// empty subjects are omitted.
func GroupBySubject(projected []mistakes.Record) []Group {
	var groups []Group
	index := make(map[subject.Subject]int)
	for _, r := range projected {
		i, ok := index[r.Subject]
		if !ok {
			i = len(groups)
			index[r.Subject] = i
			groups = append(groups, Group{Subject: r.Subject})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
