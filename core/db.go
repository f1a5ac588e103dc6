package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderingClause maps the requested orderings to columns through `columns` ({field: column}),
// silently dropping unknown fields, and returns "col1 ASC, col2 DESC".
// `fallback` is used when nothing usable remains.
func OrderingClause(ords []DBOrdering, columns map[string]string, fallback DBOrdering) string {
	parts := make([]string, 0, len(ords))
	for _, ord := range ords {
		col, ok := columns[ord.Field]
		if !ok {
			continue
		}
		parts = append(parts, DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	if len(parts) == 0 {
		if col, ok := columns[fallback.Field]; ok {
			fallback.Field = col
		}
		return fallback.String()
	}
	return strings.Join(parts, ", ")
}
