// Package authz decides role- and group-based access over string sets.
//
// Evaluate is the whole algorithm: ANY passes on a non-empty intersection,
// ALL passes on a subset, and an empty required set always passes. The same
// logic serves roles and groups; Requirement tags a value set with its
// dimension and mode so guards can combine both.
//
// When a guard carries both a role and a group requirement, both dimensions
// must pass. Authorization fails closed: adding a second dimension can only
// narrow access, never widen it.
//
// The package is framework-free and has no dependencies; turning a failed
// evaluation into a 403 is the auth facade's job.
package authz
