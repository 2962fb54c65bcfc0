package repository

import (
	"sync"

	"github.com/stemsi/academic-dashboard/internal/dashboard"
	"github.com/stemsi/academic-dashboard/internal/model"
)

// schoolCounts is the literal source table: passed ("Invictos") and failed ("Desaprobados")
// students per school. Row order is the tie-break order for every sort.
var schoolCounts = []struct {
	name   string
	passed int
	failed int
}{
	{"Ciencias Administrativas", 2606, 438},
	{"Ciencias Biológicas", 571, 331},
	{"Ciencias Contables", 2011, 1465},
	{"Ciencias Económicas", 1248, 960},
	{"Ciencias Físicas", 290, 609},
	{"Ciencias Matemáticas", 466, 834},
	{"Ciencias Sociales", 1315, 620},
	{"Derecho y Ciencia Política", 1343, 580},
	{"Educación", 1496, 598},
	{"Farmacia y Bioquímica", 513, 212},
	{"Ingenierías de Sistemas y Informática", 1059, 622},
	{"Ingeniería Electrónica y Eléctrica", 1189, 968},
	{"Ingeniería Geológica, Minera, Metalúrgica y Geográfica", 913, 898},
	{"Ingeniería Industrial", 937, 690},
	{"Letras y Ciencias Humanas", 444, 794},
	{"Medicina", 902, 559},
	{"Medicina Veterinaria", 325, 106},
	{"Odontología", 328, 94},
	{"Psicología", 1044, 141},
	{"Química e Ingeniería Química", 575, 755},
}

// SchoolRepository serves the embedded school dataset.
// The table is built once per process and never modified afterwards.
type SchoolRepository struct {
	once    sync.Once
	records []model.SchoolRecord
	index   map[string]int
}

// NewSchoolRepository creates a new SchoolRepository.
func NewSchoolRepository() *SchoolRepository {
	return &SchoolRepository{}
}

func (r *SchoolRepository) load() {
	r.once.Do(func() {
		r.records = make([]model.SchoolRecord, len(schoolCounts))
		r.index = make(map[string]int, len(schoolCounts))
		for i, row := range schoolCounts {
			r.records[i] = NewSchoolRecord(row.name, row.passed, row.failed)
			r.index[row.name] = i
		}
	})
}

// NewSchoolRecord derives enrollment and percentages from passed/failed counts.
func NewSchoolRecord(name string, passed, failed int) model.SchoolRecord {
	enrolled := passed + failed
	return model.SchoolRecord{
		Name:      name,
		Enrolled:  enrolled,
		Failed:    failed,
		Passed:    passed,
		PctPassed: dashboard.Percent(passed, enrolled),
		PctFailed: dashboard.Percent(failed, enrolled),
	}
}

// All returns a copy of every record in dataset order.
func (r *SchoolRepository) All() []model.SchoolRecord {
	r.load()
	out := make([]model.SchoolRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Names returns the school names in dataset order.
func (r *SchoolRepository) Names() []string {
	r.load()
	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.Name
	}
	return names
}

// Has reports whether name is a school in the dataset.
func (r *SchoolRepository) Has(name string) bool {
	r.load()
	_, ok := r.index[name]
	return ok
}

// Len returns the number of schools.
func (r *SchoolRepository) Len() int {
	r.load()
	return len(r.records)
}
