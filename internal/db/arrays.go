package db

import "github.com/lib/pq"

// textArray renders a string slice as a text[] statement parameter. A
// nil slice maps to the empty array rather than SQL NULL, so NOT NULL
// array columns stay satisfiable no matter what the caller derived.
func textArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
