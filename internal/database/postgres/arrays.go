package postgres

import "github.com/lib/pq"

// textArray wraps a slice for a TEXT[] parameter, coalescing nil to an
// empty slice. pq.Array encodes a nil slice as SQL NULL, which the
// NOT NULL array columns would reject.
func textArray(s []string) any {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}
