package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/catalog-api/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Kind int

const (
	String Kind = iota
	Number
	Bool
	Time
	UUID
)

// Field maps an API field name onto a column.
type Field struct {
	Column string
	Kind   Kind
}

// Fields is the per-resource whitelist of filterable and sortable fields.
type Fields map[string]Field

var sqlOps = map[string]string{
	OpEq:  "=",
	OpGte: ">=",
	OpGt:  ">",
	OpLte: "<=",
	OpLt:  "<",
}

// Apply adds the WHERE, ORDER BY, OFFSET and LIMIT clauses described by spec.
// Fields that are not in the whitelist are rejected with a validation error.
func Apply(db *gorm.DB, spec Spec, fields Fields) (*gorm.DB, error) {
	db, err := Filter(db, spec, fields)
	if err != nil {
		return nil, err
	}

	for _, key := range spec.Sort {
		f, ok := fields[key.Field]
		if !ok {
			return nil, apperr.Validationf("Invalid sort field: %s", key.Field)
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: key.Desc})
	}

	return db.Offset(spec.Skip).Limit(spec.Limit), nil
}

// Filter applies only the predicates of spec.
func Filter(db *gorm.DB, spec Spec, fields Fields) (*gorm.DB, error) {
	for _, p := range spec.Predicates {
		f, ok := fields[p.Field]
		if !ok {
			return nil, apperr.Validationf("Invalid filter field: %s", p.Field)
		}
		op, ok := sqlOps[p.Op]
		if !ok {
			return nil, apperr.Validationf("Invalid filter operator %q on %s", p.Op, p.Field)
		}
		if op != "=" && (f.Kind == Bool || f.Kind == UUID) {
			return nil, apperr.Validationf("Operator %q is not supported on %s", p.Op, p.Field)
		}
		value, err := coerce(f.Kind, p.Value)
		if err != nil {
			return nil, apperr.Validationf("Invalid %s: %s", p.Field, p.Value)
		}
		db = db.Where(fmt.Sprintf("%s %s ?", f.Column, op), value)
	}
	return db, nil
}

func coerce(kind Kind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case Number:
		return strconv.ParseFloat(raw, 64)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC(), nil
		}
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case UUID:
		return uuid.Parse(raw)
	default:
		return raw, nil
	}
}
