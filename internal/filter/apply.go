package filter

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Apply adds the WHERE clauses of q to db. Sorting and paging are applied
// separately by Paginate so the same scope can be counted.
func Apply(db *gorm.DB, q Query, schema Schema) *gorm.DB {
	for _, p := range q.Predicates {
		db = applyPredicate(db, p, schema)
	}
	return db
}

func applyPredicate(db *gorm.DB, p Predicate, schema Schema) *gorm.DB {
	switch p.Op {
	case OpContainsFold:
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(p.Value)) + "%"
		parts := make([]string, 0, len(schema.TextColumns))
		args := make([]any, 0, len(schema.TextColumns))
		for _, col := range schema.TextColumns {
			parts = append(parts, fmt.Sprintf(`LOWER(%s.%s) LIKE ? ESCAPE '\'`, schema.Table, col))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(parts, " OR ")+")", args...)
	case OpHasMember:
		m := schema.Membership
		return db.Where(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s m WHERE m.%s = %s.id AND m.%s = ?)",
			m.Table, m.ForeignKey, schema.Table, m.Column,
		), p.Value)
	}

	col := clause.Column{Table: schema.Table, Name: p.Field}
	switch p.Op {
	case OpGte:
		return db.Where(clause.Gte{Column: col, Value: p.Value})
	case OpLte:
		return db.Where(clause.Lte{Column: col, Value: p.Value})
	default:
		return db.Where(clause.Eq{Column: col, Value: p.Value})
	}
}

// Paginate applies the sort and page window of q. Ties on the sort column
// are broken by id so pages are stable.
func Paginate(db *gorm.DB, q Query, schema Schema) *gorm.DB {
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: schema.Table, Name: q.Sort.Column}, Desc: q.Sort.Desc})
	if q.Sort.Column != "id" {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Table: schema.Table, Name: "id"}, Desc: q.Sort.Desc})
	}
	return db.Limit(q.Size).Offset(q.Offset())
}
