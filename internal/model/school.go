package model

// SortKey enumerates the numeric fields a dashboard view can be ordered by.
type SortKey string

const (
	SortByEnrolled  SortKey = "enrolled"
	SortByPassed    SortKey = "passed"
	SortByFailed    SortKey = "failed"
	SortByPctPassed SortKey = "pctPassed"
	SortByPctFailed SortKey = "pctFailed"
)

// DefaultSortKey is used when a request does not name one.
const DefaultSortKey = SortByEnrolled

// SortKeys lists every sort key in the order the sort selector shows them.
var SortKeys = []SortKey{SortByEnrolled, SortByPassed, SortByFailed, SortByPctPassed, SortByPctFailed}

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Label returns the Spanish column label used on the page, the chart and exports.
func (k SortKey) Label() string {
	switch k {
	case SortByEnrolled:
		return "Matriculados"
	case SortByPassed:
		return "Invictos"
	case SortByFailed:
		return "Desaprobados"
	case SortByPctPassed:
		return "% Invictos"
	case SortByPctFailed:
		return "% Desaprobados"
	default:
		return string(k)
	}
}

// SchoolRecord is one row of the academic performance table.
// Enrolled always equals Passed + Failed.
type SchoolRecord struct {
	Name      string  `json:"name"`
	Enrolled  int     `json:"enrolled"`
	Failed    int     `json:"failed"`
	Passed    int     `json:"passed"`
	PctPassed float64 `json:"pct_passed"`
	PctFailed float64 `json:"pct_failed"`
}

// Value returns the field selected by k. Unknown keys read as Enrolled.
func (r SchoolRecord) Value(k SortKey) float64 {
	switch k {
	case SortByPassed:
		return float64(r.Passed)
	case SortByFailed:
		return float64(r.Failed)
	case SortByPctPassed:
		return r.PctPassed
	case SortByPctFailed:
		return r.PctFailed
	default:
		return float64(r.Enrolled)
	}
}

// ViewState is everything a single dashboard render depends on.
type ViewState struct {
	Selected  []string `json:"selected"`
	SortKey   SortKey  `json:"sort_key"`
	ShowTable bool     `json:"show_table"`
}

// DefaultViewState mirrors the initial state of the page: every school, sorted by enrollment,
// table hidden. An empty selection already means "every school".
func DefaultViewState() ViewState {
	return ViewState{SortKey: DefaultSortKey}
}

// Totals holds the KPI sums over a filtered view.
type Totals struct {
	Enrolled  int     `json:"enrolled"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	PctPassed float64 `json:"pct_passed"`
	PctFailed float64 `json:"pct_failed"`
}
