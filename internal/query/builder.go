package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Builder accumulates WHERE conditions with positional arguments. Absent
// filters are simply never added, so an empty builder matches everything.
type Builder struct {
	conditions []string
	args       []interface{}
}

// NewBuilder returns an empty condition builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Where appends a condition. Occurrences of ? are rewritten to the next
// positional placeholders.
func (b *Builder) Where(expr string, values ...interface{}) *Builder {
	var sb strings.Builder
	n := len(b.args)
	for _, r := range expr {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	b.conditions = append(b.conditions, sb.String())
	b.args = append(b.args, values...)
	return b
}

// Equals appends an exact-match condition on a column.
func (b *Builder) Equals(column string, value interface{}) *Builder {
	return b.Where(column+" = ?", value)
}

// Search appends a case-insensitive substring match OR-ed across the given
// columns. Empty terms add no condition.
func (b *Builder) Search(term string, columns ...string) *Builder {
	if term == "" || len(columns) == 0 {
		return b
	}
	placeholder := fmt.Sprintf("$%d", len(b.args)+1)
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("LOWER(%s) LIKE %s", col, placeholder)
	}
	b.conditions = append(b.conditions, "("+strings.Join(parts, " OR ")+")")
	b.args = append(b.args, "%"+strings.ToLower(term)+"%")
	return b
}

// Clause renders the accumulated conditions as a WHERE clause, or an empty
// string when no filter was declared.
func (b *Builder) Clause() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// Args returns the positional arguments in declaration order.
func (b *Builder) Args() []interface{} {
	return b.args
}

// OrderBy renders a deterministic ORDER BY clause from a comma-separated sort
// expression such as "-createdAt,title". Fields are resolved through the
// per-collection whitelist; unknown fields are skipped. The fallback is used
// when nothing resolves, and the tie-break column keeps pagination stable
// across pages.
func OrderBy(sort string, allowed map[string]string, fallback, tieBreak string) string {
	var keys []string
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		direction := "ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			direction = "DESC"
		}
		column, ok := allowed[field]
		if !ok {
			continue
		}
		keys = append(keys, column+" "+direction)
	}
	if len(keys) == 0 {
		keys = append(keys, fallback)
	}
	if tieBreak != "" {
		keys = append(keys, tieBreak)
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}
