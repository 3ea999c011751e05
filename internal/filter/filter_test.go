package filter_test

import (
	"testing"

	"github.com/infocus-dev/showcase/internal/cms"
	"github.com/infocus-dev/showcase/internal/filter"
)

func corpus() []cms.Item {
	return []cms.Item{
		{ID: 1, TagSlugs: []string{"direction"}, CategorySlugs: []string{"works"}},
		{ID: 2, TagSlugs: []string{"design"}, CategorySlugs: []string{"works"}},
		{ID: 3, TagSlugs: []string{"direction"}, CategorySlugs: []string{"lab"}, Archived: true},
		{ID: 4, CategorySlugs: []string{"lab"}},
	}
}

func visibleIDs(items []cms.Item) []int64 {
	var ids []int64
	for _, it := range items {
		if it.Visible {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func TestApply(t *testing.T) {
	tests := []struct {
		name        string
		state       filter.State
		wantVisible []int64
	}{
		{"default hides archived", filter.State{}, []int64{1, 2, 4}},
		{"archived shows only archived", filter.State{Archived: true}, []int64{3}},
		{"tag match includes archived", filter.State{Tag: "direction"}, []int64{1, 3}},
		{"tag match is case-insensitive", filter.State{Tag: "Direction"}, []int64{1, 3}},
		{"category match includes archived", filter.State{Category: "lab"}, []int64{3, 4}},
		{"archived wins over tag", filter.State{Archived: true, Tag: "design"}, []int64{3}},
		{"tag wins over category", filter.State{Tag: "design", Category: "lab"}, []int64{2}},
		{"no match hides everything", filter.State{Tag: "missing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := corpus()
			res := filter.Apply(items, tt.state)

			got := visibleIDs(items)
			if len(got) != len(tt.wantVisible) {
				t.Fatalf("visible ids = %v, want %v", got, tt.wantVisible)
			}
			for i := range got {
				if got[i] != tt.wantVisible[i] {
					t.Fatalf("visible ids = %v, want %v", got, tt.wantVisible)
				}
			}
			if res.Visible != len(tt.wantVisible) {
				t.Errorf("visible count = %d, want %d", res.Visible, len(tt.wantVisible))
			}
			if res.Hidden != len(items)-len(tt.wantVisible) {
				t.Errorf("hidden count = %d, want %d", res.Hidden, len(items)-len(tt.wantVisible))
			}
		})
	}
}

func TestApply_PreservesMembershipAndOrder(t *testing.T) {
	items := corpus()
	filter.Apply(items, filter.State{Tag: "direction"})

	if len(items) != 4 {
		t.Fatalf("len = %d, want 4", len(items))
	}
	for i, want := range []int64{1, 2, 3, 4} {
		if items[i].ID != want {
			t.Errorf("items[%d].ID = %d, want %d", i, items[i].ID, want)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	items := corpus()
	first := filter.Apply(items, filter.State{Category: "works"})
	second := filter.Apply(items, filter.State{Category: "works"})

	if first != second {
		t.Errorf("second pass = %+v, want %+v", second, first)
	}
}

func TestState_IsZero(t *testing.T) {
	if !(filter.State{}).IsZero() {
		t.Error("zero state should report IsZero")
	}
	if (filter.State{Tag: "x"}).IsZero() {
		t.Error("tag state should not report IsZero")
	}
}
