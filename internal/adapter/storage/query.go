package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is satisfied by both *pgxpool.Pool and pgx.Tx
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed predicates with positional arguments
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate. Each %s in clause is replaced by the next
// placeholder, so one call may bind several arguments.
func (w *where) add(clause string, args ...any) {
	placeholders := make([]any, len(args))
	for i, a := range args {
		w.args = append(w.args, a)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf(clause, placeholders...))
}

// addSame appends a predicate that refers to one argument several times
func (w *where) addSame(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders and returns the clause and args
func (w *where) page(limit, offset int) (string, []any) {
	args := append(append([]any{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)+1, len(w.args)+2), args
}

// like wraps s for a case-insensitive substring match
func like(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
