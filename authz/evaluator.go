package authz

import (
	"fmt"
	"strings"
)

// Mode selects how a requirement's values combine.
type Mode int

const (
	// ModeAny passes when the caller holds at least one required value.
	ModeAny Mode = iota
	// ModeAll passes only when the caller holds every required value.
	ModeAll
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "any"
}

// Dimension names the claim set a requirement applies to.
type Dimension string

const (
	DimensionRoles  Dimension = "roles"
	DimensionGroups Dimension = "groups"
)

// Evaluate reports whether have satisfies required under the given mode.
// An empty required set always passes, in both modes.
func Evaluate(have, required []string, mode Mode) bool {
	if len(required) == 0 {
		return true
	}

	haveSet := make(map[string]bool, len(have))
	for _, v := range have {
		haveSet[v] = true
	}

	if mode == ModeAll {
		for _, v := range required {
			if !haveSet[v] {
				return false
			}
		}
		return true
	}

	for _, v := range required {
		if haveSet[v] {
			return true
		}
	}
	return false
}

// Requirement couples required values with their mode and dimension. Guards
// carry Requirements so a denial can name the dimension in logs while the
// caller-facing message stays generic.
type Requirement struct {
	Dimension Dimension
	Values    []string
	Mode      Mode
}

// Roles builds a role requirement.
func Roles(mode Mode, values ...string) Requirement {
	return Requirement{Dimension: DimensionRoles, Values: values, Mode: mode}
}

// Groups builds a group requirement.
func Groups(mode Mode, values ...string) Requirement {
	return Requirement{Dimension: DimensionGroups, Values: values, Mode: mode}
}

// Satisfied reports whether the caller's values meet this requirement.
func (r Requirement) Satisfied(have []string) bool {
	return Evaluate(have, r.Values, r.Mode)
}

// String renders the requirement for internal logs.
func (r Requirement) String() string {
	return fmt.Sprintf("%s %s of [%s]", r.Dimension, r.Mode, strings.Join(r.Values, ", "))
}
