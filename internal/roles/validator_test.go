package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Senior Data Scientist":        "senior data scientist",
		"  Data-Scientist (Remote) ":   "data scientist remote",
		"O9 Technical Architect":       "o9 technical architect",
		"Data Scientist 2, Team #4521": "data scientist team",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name      string
		title     string
		requested []string
		wantRole  string
		wantOK    bool
	}{
		{
			name:      "direct containment",
			title:     "Senior Data Scientist",
			requested: []string{"Data Scientist"},
			wantRole:  "Data Scientist",
			wantOK:    true,
		},
		{
			name:      "code-only title with unrelated keyword is rejected",
			title:     "O9 Technical Architect",
			requested: []string{"Data Scientist", "ML Engineer"},
		},
		{
			name:      "keyword overlap path",
			title:     "Machine Learning Engineer",
			requested: []string{"ML Engineer"},
			wantRole:  "ML Engineer",
			wantOK:    true,
		},
		{
			name:      "longest containment wins",
			title:     "Lead Machine Learning Engineer, Ads",
			requested: []string{"Engineer", "Machine Learning Engineer", "Machine Learning"},
			wantRole:  "Machine Learning Engineer",
			wantOK:    true,
		},
		{
			name:      "containment respects word boundaries",
			title:     "Maintenance Technician",
			requested: []string{"AI"},
		},
		{
			name:      "shared token without keyword is rejected",
			title:     "Data Entry Clerk",
			requested: []string{"Data Scientist"},
		},
		{
			name:      "pure code title is rejected",
			title:     "REQ-20931 X7",
			requested: []string{"Data Scientist"},
		},
		{
			name:      "overlap prefers more shared tokens",
			title:     "Applied Scientist, Data Platform",
			requested: []string{"Research Scientist", "Data Scientist"},
			wantRole:  "Data Scientist",
			wantOK:    true,
		},
		{
			name:      "returned role keeps configured spelling",
			title:     "data scientist ii",
			requested: []string{"  Data Scientist "},
			wantRole:  "Data Scientist",
			wantOK:    true,
		},
		{
			name:      "no requested roles rejects",
			title:     "Data Scientist",
			requested: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			role, ok := v.Validate(tc.title, tc.requested)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantRole, role)
		})
	}
}

func TestValidateCustomKeywords(t *testing.T) {
	v := NewValidator([]string{"Quant"})

	role, ok := v.Validate("Quant Researcher", []string{"Quant Analyst"})
	assert.True(t, ok)
	assert.Equal(t, "Quant Analyst", role)

	_, ok = v.Validate("Machine Learning Engineer", []string{"ML Engineer"})
	assert.False(t, ok, "keyword list is configuration, not a fixed oracle")
	assert.Equal(t, []string{"quant"}, v.Keywords())
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	tr.Track("NVIDIA", "Payroll Specialist")
	tr.Track("NVIDIA", "Payroll Specialist")
	tr.Track("NVIDIA", "Chef")
	tr.Track("Zoom", "Recruiter")

	all := tr.Snapshot("", 1)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, all["NVIDIA"]["Payroll Specialist"])

	frequent := tr.Snapshot("", 2)
	assert.Equal(t, map[string]map[string]int{"NVIDIA": {"Payroll Specialist": 2}}, frequent)

	zoom := tr.Snapshot("Zoom", 1)
	assert.Equal(t, map[string]map[string]int{"Zoom": {"Recruiter": 1}}, zoom)

	tr.Reset()
	assert.Empty(t, tr.Snapshot("", 1))
}
