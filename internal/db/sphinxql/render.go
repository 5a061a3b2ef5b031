package sphinxql

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/psyvisions/foofind-web/internal/db"
	"github.com/psyvisions/foofind-web/internal/domain/search/filter"
	"github.com/psyvisions/foofind-web/internal/domain/search/mode"
)

const (
	idColumn     = "id"
	weightColumn = "weight"
)

// renderSelect renders a query as one SphinxQL SELECT statement.
func renderSelect(q *db.Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder

	b.WriteString("SELECT *, WEIGHT() AS " + weightColumn)
	for _, expr := range q.Select {
		b.WriteString(", " + expr)
	}
	b.WriteString(" FROM " + q.Index)

	where, err := renderWhere(q)
	if err != nil {
		return "", err
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if q.Sort != "" {
		b.WriteString(" ORDER BY " + q.Sort)
	}
	fmt.Fprintf(&b, " LIMIT %d,%d", q.Offset, q.Limit)

	if opts := renderOptions(q); len(opts) > 0 {
		b.WriteString(" OPTION " + strings.Join(opts, ", "))
	}
	return b.String(), nil
}

func renderWhere(q *db.Query) ([]string, error) {
	var where []string
	switch q.Mode {
	case mode.Extended:
		if q.Text != "" {
			where = append(where, "MATCH("+quote(q.Text)+")")
		}
	case mode.All:
		if text := escapeText(q.Text); text != "" {
			where = append(where, "MATCH("+quote(text)+")")
		}
	case mode.FullScan:
	}

	for _, c := range q.Filters.Must() {
		if c.IsRange() {
			where = append(where, renderRange(c.Key(), c.Range())...)
			continue
		}
		if len(c.Values()) == 0 {
			// Empty inclusion matches nothing; document ids start at 1.
			where = append(where, idColumn+"=0")
			continue
		}
		where = append(where, c.Key()+" IN ("+joinInts(c.Values())+")")
	}
	for _, c := range q.Filters.MustNot() {
		if c.IsRange() {
			return nil, fmt.Errorf("%w: negated range on %s", db.ErrInvalidQuery, c.Key())
		}
		if len(c.Values()) == 0 {
			continue
		}
		where = append(where, c.Key()+" NOT IN ("+joinInts(c.Values())+")")
	}
	return where, nil
}

func renderRange(key string, r *filter.Range) []string {
	var out []string
	add := func(op string, v *float64) {
		if v != nil {
			out = append(out, key+op+strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	add(">", r.GT())
	add(">=", r.GTE())
	add("<", r.LT())
	add("<=", r.LTE())
	return out
}

func renderOptions(q *db.Query) []string {
	var opts []string
	if q.Ranker != "" {
		opts = append(opts, "ranker=expr("+quote(q.Ranker)+")")
	}
	if len(q.FieldWeights) > 0 {
		fw := make([]string, len(q.FieldWeights))
		for i, w := range q.FieldWeights {
			fw[i] = w.Field + "=" + strconv.Itoa(w.Weight)
		}
		opts = append(opts, "field_weights=("+strings.Join(fw, ", ")+")")
	}
	if q.MaxMatches > 0 {
		opts = append(opts, "max_matches="+strconv.Itoa(q.MaxMatches))
	}
	if q.Cutoff > 0 {
		opts = append(opts, "cutoff="+strconv.Itoa(q.Cutoff))
	}
	if q.MaxQueryTime > 0 {
		opts = append(opts, "max_query_time="+strconv.FormatInt(q.MaxQueryTime.Milliseconds(), 10))
	}
	if q.Comment != "" {
		opts = append(opts, "comment="+quote(q.Comment))
	}
	return opts
}

// renderUpdates renders one UPDATE per distinct value, values and ids ascending.
func renderUpdates(index, attr string, values map[uint64]int64) []string {
	byValue := make(map[int64][]uint64)
	for id, v := range values {
		byValue[v] = append(byValue[v], id)
	}
	keys := make([]int64, 0, len(byValue))
	for v := range byValue {
		keys = append(keys, v)
	}
	slices.Sort(keys)

	stmts := make([]string, 0, len(keys))
	for _, v := range keys {
		ids := byValue[v]
		slices.Sort(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatUint(id, 10)
		}
		stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s=%d WHERE id IN (%s)", index, attr, v, strings.Join(parts, ",")))
	}
	return stmts
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote renders s as a single-quoted SphinxQL string literal.
func quote(s string) string { return "'" + quoter.Replace(s) + "'" }

var textEscaper = strings.NewReplacer(
	`\`, `\\`, `(`, `\(`, `)`, `\)`, `|`, `\|`, `-`, `\-`, `!`, `\!`, `@`, `\@`,
	`~`, `\~`, `"`, `\"`, `&`, `\&`, `/`, `\/`, `^`, `\^`, `$`, `\$`, `=`, `\=`, `<`, `\<`,
)

// escapeText turns free text into an all-terms match: every operator is escaped.
func escapeText(s string) string { return textEscaper.Replace(strings.TrimSpace(s)) }

func joinInts(vs []int64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}
