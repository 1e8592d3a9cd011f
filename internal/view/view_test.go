package view

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dimaray2024/xiaona/internal/mistakes"
	"github.com/Dimaray2024/xiaona/internal/subject"
)

func rec(id, desc string, sub subject.Subject) mistakes.Record {
	return mistakes.Record{ID: id, ProblemDescription: desc, Subject: sub}
}

func ids(rs []mistakes.Record) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

var sample = []mistakes.Record{
	rec("mistake_1718000000002_0000", "banana", subject.Math),
	rec("mistake_1718000000001_0000", "Apple", subject.English),
	rec("mistake_1718000000003_0000", "cherry", subject.Math),
	rec("mistake_1718000000001_0001", "apple pie", subject.Chinese),
	rec("mistake_1718000000004_0000", "Banana split", subject.Other),
}

func TestProject_Filter(t *testing.T) {
	tests := []struct {
		filter Filter
		want   int
	}{
		{FilterAll, 5},
		{Filter(subject.Math), 2},
		{Filter(subject.English), 1},
		{Filter("数"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Project(sample, tt.filter, DateAsc)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			for _, r := range got {
				if tt.filter != FilterAll && Filter(r.Subject) != tt.filter {
					t.Errorf("record %s has subject %s", r.ID, r.Subject)
				}
			}
		})
	}
}

func TestProject_DateOrders(t *testing.T) {
	wantAsc := []string{
		"mistake_1718000000001_0000",
		"mistake_1718000000001_0001",
		"mistake_1718000000002_0000",
		"mistake_1718000000003_0000",
		"mistake_1718000000004_0000",
	}
	if diff := cmp.Diff(wantAsc, ids(Project(sample, FilterAll, DateAsc))); diff != "" {
		t.Errorf("date-asc (-want +got):\n%s", diff)
	}

	wantDesc := slices.Clone(wantAsc)
	slices.Reverse(wantDesc)
	if diff := cmp.Diff(wantDesc, ids(Project(sample, FilterAll, DateDesc))); diff != "" {
		t.Errorf("date-desc (-want +got):\n%s", diff)
	}
}

func TestProject_NameOrderIsLocaleAware(t *testing.T) {
	got := Project(sample, FilterAll, NameAsc)
	var descs []string
	for _, r := range got {
		descs = append(descs, r.ProblemDescription)
	}
	want := []string{"Apple", "apple pie", "banana", "Banana split", "cherry"}
	if diff := cmp.Diff(want, descs); diff != "" {
		t.Errorf("name-asc (-want +got):\n%s", diff)
	}
}

func TestProject_ChinesePinyinOrder(t *testing.T) {
	all := []mistakes.Record{
		rec("a", "张", subject.Chinese),
		rec("b", "王", subject.Chinese),
		rec("c", "李", subject.Chinese),
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids(Project(all, FilterAll, NameAsc))); diff != "" {
		t.Errorf("pinyin order (-want +got):\n%s", diff)
	}
}

func TestProject_DescIsReverseOfAsc(t *testing.T) {
	all := append(slices.Clone(sample),
		rec("mistake_1718000000005_0000", "banana", subject.Math),
		rec("mistake_1718000000006_0000", "banana", subject.English),
	)
	pairs := [][2]SortOrder{{DateAsc, DateDesc}, {NameAsc, NameDesc}}
	for _, f := range Filters {
		for _, p := range pairs {
			asc := ids(Projector{}.Project(all, f.Value, p[0]))
			desc := ids(Projector{}.Project(all, f.Value, p[1]))
			slices.Reverse(desc)
			if diff := cmp.Diff(asc, desc); diff != "" {
				t.Errorf("%s/%s not reverse of %s (-asc +reversed desc):\n%s", f.Value, p[1], p[0], diff)
			}
		}
	}
}

func TestProject_StableForEqualNames(t *testing.T) {
	all := []mistakes.Record{
		rec("z", "same", subject.Math),
		rec("a", "same", subject.Math),
		rec("m", "same", subject.Math),
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, ids(Project(all, FilterAll, NameAsc))); diff != "" {
		t.Errorf("ties must keep input order (-want +got):\n%s", diff)
	}
}

func TestProject_DoesNotModifyInput(t *testing.T) {
	before := ids(sample)
	Project(sample, FilterAll, NameDesc)
	if diff := cmp.Diff(before, ids(sample)); diff != "" {
		t.Errorf("input modified:\n%s", diff)
	}
}

func TestProject_UnknownOrderFallsBackToNewestFirst(t *testing.T) {
	got := ids(Project(sample, FilterAll, "bogus"))
	want := ids(Project(sample, FilterAll, DateDesc))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestGroupBySubject(t *testing.T) {
	projected := Project(sample, FilterAll, DateAsc)
	groups := GroupBySubject(projected)

	var order []subject.Subject
	var flat []mistakes.Record
	for _, g := range groups {
		if len(g.Records) == 0 {
			t.Errorf("empty group %s", g.Subject)
		}
		for _, r := range g.Records {
			if r.Subject != g.Subject {
				t.Errorf("record %s in group %s", r.ID, g.Subject)
			}
		}
		order = append(order, g.Subject)
		flat = append(flat, g.Records...)
	}

	wantOrder := []subject.Subject{subject.English, subject.Chinese, subject.Math, subject.Other}
	if diff := cmp.Diff(wantOrder, order); diff != "" {
		t.Errorf("group order (-want +got):\n%s", diff)
	}

	// Within each group the projected order is kept.
	for _, g := range groups {
		var want []mistakes.Record
		for _, r := range projected {
			if r.Subject == g.Subject {
				want = append(want, r)
			}
		}
		if diff := cmp.Diff(want, g.Records); diff != "" {
			t.Errorf("group %s order (-want +got):\n%s", g.Subject, diff)
		}
	}
	if len(flat) != len(projected) {
		t.Errorf("grouped %d records, projected %d", len(flat), len(projected))
	}
}

func TestGroupBySubject_Empty(t *testing.T) {
	if got := GroupBySubject(nil); len(got) != 0 {
		t.Errorf("got %d groups", len(got))
	}
}

func TestParse(t *testing.T) {
	for _, o := range SortOrders {
		got, err := ParseSortOrder(string(o.Value))
		if err != nil || got != o.Value {
			t.Errorf("ParseSortOrder(%q) = %q, %v", o.Value, got, err)
		}
	}
	if got, _ := ParseSortOrder(""); got != DateDesc {
		t.Errorf("empty sort order = %q", got)
	}
	if _, err := ParseSortOrder("newest"); err == nil {
		t.Error("expected error for unknown sort order")
	}

	for _, f := range Filters {
		got, err := ParseFilter(string(f.Value))
		if err != nil || got != f.Value {
			t.Errorf("ParseFilter(%q) = %q, %v", f.Value, got, err)
		}
	}
	if _, err := ParseFilter("物理"); err == nil {
		t.Error("expected error for unknown subject")
	}
}

func TestLabels(t *testing.T) {
	if got := DateDesc.Label(); got != "添加日期 (最新)" {
		t.Errorf("DateDesc label = %q", got)
	}
	if got := FilterAll.Label(); got != "所有学科" {
		t.Errorf("FilterAll label = %q", got)
	}
	if got := SortOrder("x").Label(); got != "x" {
		t.Errorf("unknown label = %q", got)
	}
}

// Scenario A from the product walkthrough: two math mistakes graded from one
// submission, plus older records, filtered to math newest first.
func TestScenario_MathNewestFirst(t *testing.T) {
	all := []mistakes.Record{
		rec("mistake_1718000000001_0000", "old math", subject.Math),
		rec("mistake_1718000000001_0001", "old english", subject.English),
	}
	for i := range 2 {
		all = append(all, rec(fmt.Sprintf("mistake_1718000000009_%04d", i), "new math", subject.Math))
	}

	got := ids(Project(all, Filter(subject.Math), DateDesc))
	want := []string{
		"mistake_1718000000009_0001",
		"mistake_1718000000009_0000",
		"mistake_1718000000001_0000",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
