// Package util provides small generic helpers used across the kit.
//
// It includes slice and map operations, pointer helpers, and masking
// functions for keeping secrets and tokens out of log output.
package util
