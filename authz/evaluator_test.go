package authz

import "testing"

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		have     []string
		required []string
		mode     Mode
		want     bool
	}{
		{"any: one match passes", []string{"admin"}, []string{"admin", "mod"}, ModeAny, true},
		{"all: partial fails", []string{"admin"}, []string{"admin", "mod"}, ModeAll, false},
		{"all: full set passes", []string{"admin", "mod", "viewer"}, []string{"admin", "mod"}, ModeAll, true},
		{"any: no overlap fails", []string{"viewer"}, []string{"admin", "mod"}, ModeAny, false},
		{"any: empty required passes", []string{}, nil, ModeAny, true},
		{"all: empty required passes", nil, nil, ModeAll, true},
		{"any: empty have fails", nil, []string{"admin"}, ModeAny, false},
		{"all: empty have fails", nil, []string{"admin"}, ModeAll, false},
		{"duplicate values in have", []string{"admin", "admin"}, []string{"admin"}, ModeAll, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.have, tt.required, tt.mode); got != tt.want {
				t.Errorf("Evaluate(%v, %v, %s) = %v, want %v",
					tt.have, tt.required, tt.mode, got, tt.want)
			}
		})
	}
}

func TestRequirement_Satisfied(t *testing.T) {
	req := Roles(ModeAny, "admin", "mod")
	if !req.Satisfied([]string{"admin"}) {
		t.Error("ANY requirement with a matching role should pass")
	}

	req = Roles(ModeAll, "admin", "mod")
	if req.Satisfied([]string{"admin"}) {
		t.Error("ALL requirement with a partial match should fail")
	}

	if got := Groups(ModeAll, "eng").Dimension; got != DimensionGroups {
		t.Errorf("dimension = %s", got)
	}
}

func TestRequirement_String(t *testing.T) {
	got := Roles(ModeAll, "admin", "mod").String()
	want := "roles all of [admin, mod]"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
