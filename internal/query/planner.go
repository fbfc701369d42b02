package query

import (
	"fmt"
	"strings"

	"creator-crm/internal/domain"
	"creator-crm/internal/errs"
)

// Predicate is a single "column is one of values" condition. Filterable
// fields are data here, not branches: adding a new filter means adding one
// entry to the descriptor list Build assembles, nothing else.
type Predicate struct {
	Column string
	Values []string
}

// Plan is a fully validated query plan for one page of creators: an
// optional substring search OR-combined over the search columns, an
// AND-combined predicate list, a whitelisted single-column sort and
// offset/limit pagination.
type Plan struct {
	Search     string
	Predicates []Predicate
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}

// searchColumns are the columns a free-text search matches against.
var searchColumns = []string{"name", "username", "email"}

// sortableColumns whitelists ORDER BY targets; anything else falls back to
// the default sort so caller input never reaches SQL unchecked.
var sortableColumns = map[string]bool{
	"name":            true,
	"username":        true,
	"email":           true,
	"city":            true,
	"state":           true,
	"followers_tier":  true,
	"sheet_source":    true,
	"engagement_rate": true,
	"created_at":      true,
	"updated_at":      true,
}

const (
	defaultSortColumn = "created_at"
)

// Build validates a filter request and translates it into a Plan.
func Build(req domain.FilterRequest) (Plan, error) {
	if req.Page < 1 {
		return Plan{}, errs.Validation("page must be >= 1, got %d", req.Page)
	}
	if req.PageSize < 1 {
		return Plan{}, errs.Validation("pageSize must be > 0, got %d", req.PageSize)
	}

	descriptors := []Predicate{
		{Column: "city", Values: req.Filters.City},
		{Column: "state", Values: req.Filters.State},
		{Column: "followers_tier", Values: req.Filters.FollowersTier},
		{Column: "sheet_source", Values: req.Filters.SheetSource},
	}
	var predicates []Predicate
	for _, d := range descriptors {
		if len(d.Values) > 0 {
			predicates = append(predicates, d)
		}
	}

	orderBy := strings.TrimSpace(req.SortColumn)
	descending := strings.EqualFold(req.SortDirection, "desc")
	if !sortableColumns[orderBy] {
		orderBy = defaultSortColumn
		descending = true
	}

	return Plan{
		Search:     strings.TrimSpace(req.SearchQuery),
		Predicates: predicates,
		OrderBy:    orderBy,
		Descending: descending,
		Limit:      req.PageSize,
		Offset:     (req.Page - 1) * req.PageSize,
	}, nil
}

// WhereClause renders the plan's predicate set as a SQL WHERE clause with
// positional placeholders. An empty plan yields an empty clause (match-all).
// The same clause backs both the page select and the count query so total
// and data can never disagree on the predicate.
func (p Plan) WhereClause() (string, []any) {
	var conds []string
	var args []any

	if p.Search != "" {
		pattern := "%" + escapeLike(p.Search) + "%"
		likes := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			likes[i] = fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, col)
			args = append(args, pattern)
		}
		conds = append(conds, "("+strings.Join(likes, " OR ")+")")
	}

	for _, pred := range p.Predicates {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pred.Values)), ",")
		conds = append(conds, fmt.Sprintf("%s IN (%s)", pred.Column, placeholders))
		for _, v := range pred.Values {
			args = append(args, v)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so a search term like "100%"
// matches the literal substring instead of acting as a wildcard.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// OrderClause renders the validated ORDER BY. The id tiebreaker keeps page
// boundaries stable when the sort column has duplicate values.
func (p Plan) OrderClause() string {
	dir := "ASC"
	if p.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", p.OrderBy, dir, dir)
}
