// Package dashboard holds the pure filter, sort and aggregate pipeline behind the page.
// Nothing here touches I/O or shared state; every call recomputes from its inputs.
package dashboard

import (
	"sort"

	"github.com/stemsi/academic-dashboard/internal/chart"
	"github.com/stemsi/academic-dashboard/internal/model"
)

// View is the full output of one render.
type View struct {
	State  model.ViewState      `json:"state"`
	Rows   []model.SchoolRecord `json:"rows"`
	Totals model.Totals         `json:"totals"`
	Figure chart.Figure         `json:"figure"`
	// Table is nil unless the state asks for the data table.
	Table []model.SchoolRecord `json:"table,omitempty"`
}

// Filter keeps the records whose name is in selected, preserving dataset order.
// An empty selection keeps everything.
func Filter(records []model.SchoolRecord, selected []string) []model.SchoolRecord {
	if len(selected) == 0 {
		out := make([]model.SchoolRecord, len(records))
		copy(out, records)
		return out
	}

	want := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		want[name] = struct{}{}
	}

	out := make([]model.SchoolRecord, 0, len(selected))
	for _, r := range records {
		if _, ok := want[r.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records in place, descending by key. Ties keep their current order.
func Sort(records []model.SchoolRecord, key model.SortKey) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Value(key) > records[j].Value(key)
	})
}

// Aggregate sums the counts of records and derives the overall pass and fail rates.
func Aggregate(records []model.SchoolRecord) model.Totals {
	var t model.Totals
	for _, r := range records {
		t.Enrolled += r.Enrolled
		t.Passed += r.Passed
		t.Failed += r.Failed
	}
	t.PctPassed = Percent(t.Passed, t.Enrolled)
	t.PctFailed = Percent(t.Failed, t.Enrolled)
	return t
}

// Render runs the whole pipeline for one view state.
func Render(records []model.SchoolRecord, state model.ViewState) View {
	if !state.SortKey.Valid() {
		state.SortKey = model.DefaultSortKey
	}

	rows := Filter(records, state.Selected)
	Sort(rows, state.SortKey)

	v := View{
		State:  state,
		Rows:   rows,
		Totals: Aggregate(rows),
		Figure: chart.Compose(rows),
	}
	return WithTable(v, state.ShowTable)
}

// WithTable sets or clears the table rows of v according to show.
// Rows, totals and figure are left untouched.
func WithTable(v View, show bool) View {
	v.State.ShowTable = show
	if show {
		v.Table = v.Rows
	} else {
		v.Table = nil
	}
	return v
}
