// Package query applies allow-listed filtering, sorting, eager loading and
// pagination to gorm queries. Keys that are not in a Spec are ignored.
package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FilterMode selects how a filter value is matched
type FilterMode int

const (
	// Partial is a case-insensitive substring match
	Partial FilterMode = iota
	// Exact is an equality match
	Exact
	// ExactUUID is an equality match on a uuid column; malformed ids match nothing
	ExactUUID
	// Boolean accepts true/false/1/0
	Boolean
)

// likeEscaper makes % and _ match literally inside a LIKE pattern
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter binds an API filter key to a column
type Filter struct {
	Column string
	Mode   FilterMode
}

// Spec is the per-entity allow-list consumed by List
type Spec struct {
	Filters     map[string]Filter
	Sorts       map[string]string
	Includes    map[string]string
	DefaultSort string
	PageSize    int
}

// Meta is the pagination block returned alongside a page
type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

// ApplyFilters adds a WHERE clause for each allow-listed filter in values.
// Comma separated values are OR'ed.
func (s Spec) ApplyFilters(db *gorm.DB, values map[string]string) *gorm.DB {
	for key, raw := range values {
		f, ok := s.Filters[key]
		if !ok {
			continue
		}
		parts := splitList(raw)
		if len(parts) == 0 {
			continue
		}

		switch f.Mode {
		case Partial:
			conds := make([]string, len(parts))
			args := make([]interface{}, len(parts))
			for i, p := range parts {
				conds[i] = fmt.Sprintf(`LOWER(CAST(%s AS TEXT)) LIKE ? ESCAPE '\'`, f.Column)
				args[i] = "%" + likeEscaper.Replace(strings.ToLower(p)) + "%"
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		case Exact:
			db = db.Where(clause.IN{Column: clause.Column{Name: f.Column}, Values: toInterfaces(parts)})
		case ExactUUID:
			ids := make([]interface{}, 0, len(parts))
			for _, p := range parts {
				if id, err := uuid.Parse(p); err == nil {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				db = db.Where("1 = 0")
				continue
			}
			db = db.Where(clause.IN{Column: clause.Column{Name: f.Column}, Values: ids})
		case Boolean:
			b, err := strconv.ParseBool(parts[0])
			if err != nil {
				continue
			}
			db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: b})
		}
	}
	return db
}

// ApplySort orders by the allow-listed fields, falling back to DefaultSort.
// A "-" prefix sorts descending.
func (s Spec) ApplySort(db *gorm.DB, fields []string) *gorm.DB {
	applied := false
	for _, field := range fields {
		if db2, ok := s.orderBy(db, field); ok {
			db = db2
			applied = true
		}
	}
	if !applied && s.DefaultSort != "" {
		desc := strings.HasPrefix(s.DefaultSort, "-")
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: strings.TrimPrefix(s.DefaultSort, "-")}, Desc: desc})
	}
	// id keeps pages stable when the sort key ties
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

func (s Spec) orderBy(db *gorm.DB, field string) (*gorm.DB, bool) {
	desc := strings.HasPrefix(field, "-")
	column, ok := s.Sorts[strings.TrimPrefix(field, "-")]
	if !ok {
		return db, false
	}
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}), true
}

// ApplyIncludes preloads the allow-listed relations
func (s Spec) ApplyIncludes(db *gorm.DB, names []string) *gorm.DB {
	seen := map[string]bool{}
	for _, name := range names {
		rel, ok := s.Includes[name]
		if !ok || seen[rel] {
			continue
		}
		seen[rel] = true
		db = db.Preload(rel)
	}
	return db
}

// pageSize resolves the effective page size for p
func (s Spec) pageSize(p Params) int {
	size := p.PerPage
	if size == 0 {
		size = s.PageSize
	}
	if size == 0 {
		size = 15
	}
	if size > MaxPerPage {
		size = MaxPerPage
	}
	return size
}

// List runs a filtered, sorted and paginated query for T
func List[T any](db *gorm.DB, spec Spec, p Params) ([]T, Meta, error) {
	base := spec.ApplyFilters(db.Model(new(T)), p.Filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, Meta{}, fmt.Errorf("count: %w", err)
	}

	perPage := spec.pageSize(p)
	page := p.Page
	if page < 1 {
		page = 1
	}

	items := make([]T, 0)
	lastPage := lastPageOf(total, perPage)
	if page > lastPage {
		return items, buildMeta(page, perPage, total, 0), nil
	}

	q := spec.ApplyIncludes(spec.ApplySort(base, p.Sort), p.Include)
	if err := q.Limit(perPage).Offset((page - 1) * perPage).Find(&items).Error; err != nil {
		return nil, Meta{}, fmt.Errorf("list: %w", err)
	}

	return items, buildMeta(page, perPage, total, len(items)), nil
}

func lastPageOf(total int64, perPage int) int {
	lastPage := int(math.Ceil(float64(total) / float64(perPage)))
	if lastPage < 1 {
		lastPage = 1
	}
	return lastPage
}

func buildMeta(page, perPage int, total int64, count int) Meta {
	lastPage := lastPageOf(total, perPage)

	meta := Meta{CurrentPage: page, PerPage: perPage, Total: total, LastPage: lastPage}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		meta.From = &from
		meta.To = &to
	}
	return meta
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
