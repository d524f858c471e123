package repository

import "strconv"

// itoa builds positional parameter suffixes for dynamically assembled queries.
func itoa(n int) string {
	return strconv.Itoa(n)
}
