package authz

import (
	"fmt"
	"strconv"
	"strings"
)

// Predicate is one independent boolean condition over entity columns.
// Placeholders use '?' and are renumbered to pgx-style $n when the filter is
// rendered, so fragments compose regardless of the host query's own
// parameters.
type Predicate struct {
	SQL  string
	Args []any
}

func colEqual(col string, v any) Predicate {
	return Predicate{SQL: col + " = ?", Args: []any{v}}
}

func colIn[T any](col string, vals []T) Predicate {
	marks := make([]string, len(vals))
	args := make([]any, len(vals))
	for i, v := range vals {
		marks[i] = "?"
		args[i] = v
	}
	return Predicate{SQL: col + " IN (" + strings.Join(marks, ", ") + ")", Args: args}
}

// realmKindSubquery matches rows whose realm is of one of the given kinds.
func realmKindSubquery(realmCol string, kinds []RealmKind) Predicate {
	marks := make([]string, len(kinds))
	args := make([]any, len(kinds))
	for i, k := range kinds {
		marks[i] = "?"
		args[i] = string(k)
	}
	return Predicate{
		SQL:  realmCol + " IN (SELECT id FROM realms WHERE kind IN (" + strings.Join(marks, ", ") + "))",
		Args: args,
	}
}

func allOf(ps ...Predicate) Predicate {
	if len(ps) == 1 {
		return ps[0]
	}
	parts := make([]string, len(ps))
	var args []any
	for i, p := range ps {
		parts[i] = "(" + p.SQL + ")"
		args = append(args, p.Args...)
	}
	return Predicate{SQL: strings.Join(parts, " AND "), Args: args}
}

func anyOf(ps ...Predicate) Predicate {
	if len(ps) == 1 {
		return ps[0]
	}
	parts := make([]string, len(ps))
	var args []any
	for i, p := range ps {
		parts[i] = "(" + p.SQL + ")"
		args = append(args, p.Args...)
	}
	return Predicate{SQL: strings.Join(parts, " OR "), Args: args}
}

// decision is the three-valued outcome of predicate composition.
type decision int

const (
	decisionDenied decision = iota
	decisionAllowed
	decisionQuery
)

// PermitFilter is the composed access decision: Allowed (no filter needed),
// Denied (empty result set) or a Query whose predicates are OR-combined.
type PermitFilter struct {
	decision   decision
	predicates []Predicate
}

// Allowed is the unrestricted decision.
func Allowed() PermitFilter { return PermitFilter{decision: decisionAllowed} }

// Denied is the empty-result decision.
func Denied() PermitFilter { return PermitFilter{decision: decisionDenied} }

// Query wraps independent predicates meant to be OR-combined. An empty list
// collapses to Denied.
func Query(ps ...Predicate) PermitFilter {
	if len(ps) == 0 {
		return Denied()
	}
	return PermitFilter{decision: decisionQuery, predicates: ps}
}

// IsAllowed reports the unrestricted outcome.
func (f PermitFilter) IsAllowed() bool { return f.decision == decisionAllowed }

// IsDenied reports the empty-result outcome.
func (f PermitFilter) IsDenied() bool { return f.decision == decisionDenied }

// Predicates returns the OR-combined fragments of a Query decision.
func (f PermitFilter) Predicates() []Predicate { return f.predicates }

// Clause renders the filter as a single boolean SQL clause with pgx
// placeholders numbered from startIndex. Allowed renders TRUE and Denied
// FALSE so callers can splice the clause unconditionally.
func (f PermitFilter) Clause(startIndex int) (string, []any) {
	switch f.decision {
	case decisionAllowed:
		return "TRUE", nil
	case decisionDenied:
		return "FALSE", nil
	}
	folded := anyOf(f.predicates...)
	return renumber(folded.SQL, startIndex), folded.Args
}

// AppendTo attaches the filter to a base query, returning the extended SQL
// and argument list. The base query must already contain a WHERE clause.
func (f PermitFilter) AppendTo(baseSQL string, baseArgs []any) (string, []any) {
	clause, args := f.Clause(len(baseArgs) + 1)
	return baseSQL + " AND (" + clause + ")", append(baseArgs, args...)
}

// renumber rewrites '?' placeholders into $n starting at start.
func renumber(sql string, start int) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := start
	for _, r := range sql {
		if r == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// outcome is the low-cardinality label used for decision metrics.
func (f PermitFilter) outcome() string {
	switch f.decision {
	case decisionAllowed:
		return "allowed"
	case decisionDenied:
		return "denied"
	default:
		return "query"
	}
}

// String implements fmt.Stringer for log output.
func (f PermitFilter) String() string {
	switch f.decision {
	case decisionAllowed:
		return "allowed"
	case decisionDenied:
		return "denied"
	default:
		return fmt.Sprintf("query(%d predicates)", len(f.predicates))
	}
}
