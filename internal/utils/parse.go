// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi, returning def
// when the string is empty or not a plain integer. Handlers use it for path
// ids and numeric query filters, where "absent or garbage" should read as
// the zero/default rather than an error.
//
// Example:
//
//	id := utils.AtoiDefault(c.Param("id"), 0)
//	cat := utils.AtoiDefault(c.Query("category"), 0)
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
