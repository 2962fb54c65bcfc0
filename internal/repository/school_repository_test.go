package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchoolRepository_All(t *testing.T) {
	repo := NewSchoolRepository()
	records := repo.All()

	require.Len(t, records, 20)
	assert.Equal(t, "Ciencias Administrativas", records[0].Name)
	assert.Equal(t, "Química e Ingeniería Química", records[19].Name)

	for _, r := range records {
		assert.Equal(t, r.Enrolled, r.Passed+r.Failed, r.Name)
		require.Positive(t, r.Enrolled, r.Name)
		assert.LessOrEqual(t, math.Abs(r.PctPassed+r.PctFailed-100), 0.1+1e-9, r.Name)
	}
}

func TestSchoolRepository_Percentages(t *testing.T) {
	repo := NewSchoolRepository()
	byName := map[string][2]float64{}
	for _, r := range repo.All() {
		byName[r.Name] = [2]float64{r.PctPassed, r.PctFailed}
	}

	tests := []struct {
		name      string
		pctPassed float64
		pctFailed float64
	}{
		{"Ciencias Administrativas", 85.6, 14.4},
		{"Ciencias Sociales", 68.0, 32.0},
		{"Ingeniería Geológica, Minera, Metalúrgica y Geográfica", 50.4, 49.6},
		{"Medicina", 61.7, 38.3},
		{"Psicología", 88.1, 11.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := byName[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.pctPassed, got[0])
			assert.Equal(t, tt.pctFailed, got[1])
		})
	}
}

func TestSchoolRepository_AllReturnsCopy(t *testing.T) {
	repo := NewSchoolRepository()
	first := repo.All()
	first[0].Passed = -1
	first[0].Name = "changed"

	again := repo.All()
	assert.Equal(t, "Ciencias Administrativas", again[0].Name)
	assert.Equal(t, 2606, again[0].Passed)
}

func TestSchoolRepository_NamesAndHas(t *testing.T) {
	repo := NewSchoolRepository()
	names := repo.Names()

	require.Len(t, names, repo.Len())
	for _, name := range names {
		assert.True(t, repo.Has(name), name)
	}
	assert.False(t, repo.Has("Arquitectura"))
	assert.False(t, repo.Has(""))
}

func TestNewSchoolRecord_ZeroEnrollment(t *testing.T) {
	r := NewSchoolRecord("Vacía", 0, 0)

	assert.Equal(t, 0, r.Enrolled)
	assert.Zero(t, r.PctPassed)
	assert.Zero(t, r.PctFailed)
}
