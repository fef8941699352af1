// Package query turns list-endpoint query strings into a normalized Spec and
// applies it to GORM queries. Build is pure; everything that touches the
// store lives in Apply.
package query

import (
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Operators understood by Apply. Build keeps any bracket operator verbatim so
// Apply can reject it with a readable error.
const (
	OpEq  = "eq"
	OpGte = "gte"
	OpGt  = "gt"
	OpLte = "lte"
	OpLt  = "lt"
)

// tenant_id is the tenant selector fallback, consumed by the tenant middleware.
var reserved = map[string]bool{
	"page":      true,
	"sort":      true,
	"limit":     true,
	"fields":    true,
	"tenant_id": true,
}

// Predicate is a single filter condition on an API field.
type Predicate struct {
	Field string
	Op    string
	Value string
}

type SortKey struct {
	Field string
	Desc  bool
}

// Projection selects the fields of the response. Include wins over Exclude.
type Projection struct {
	Include []string
	Exclude []string
}

// Spec is the normalized form of a list request.
type Spec struct {
	Predicates []Predicate
	Sort       []SortKey
	Projection Projection
	Page       int
	Skip       int
	Limit      int
}

// Build normalizes the raw query parameters of a list request. It never
// fails: malformed pagination falls back to the defaults and unknown fields
// or operators are carried through for Apply to reject.
func Build(params map[string]string) Spec {
	spec := Spec{
		Predicates: buildPredicates(params),
		Sort:       buildSort(params["sort"]),
		Projection: buildProjection(params["fields"]),
		Page:       positiveOr(params["page"], DefaultPage),
		Limit:      positiveOr(params["limit"], DefaultLimit),
	}
	if spec.Limit > MaxLimit {
		spec.Limit = MaxLimit
	}
	spec.Skip = (spec.Page - 1) * spec.Limit
	return spec
}

// With returns a copy of s with extra predicates appended.
func (s Spec) With(preds ...Predicate) Spec {
	out := s
	out.Predicates = make([]Predicate, 0, len(s.Predicates)+len(preds))
	out.Predicates = append(out.Predicates, s.Predicates...)
	out.Predicates = append(out.Predicates, preds...)
	out.Sort = append([]SortKey(nil), s.Sort...)
	out.Projection = Projection{
		Include: append([]string(nil), s.Projection.Include...),
		Exclude: append([]string(nil), s.Projection.Exclude...),
	}
	return out
}

func buildPredicates(params map[string]string) []Predicate {
	preds := make([]Predicate, 0, len(params))
	for key, value := range params {
		if reserved[key] {
			continue
		}
		field, op := splitKey(key)
		if field == "" {
			continue
		}
		preds = append(preds, Predicate{Field: field, Op: op, Value: value})
	}
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Field != preds[j].Field {
			return preds[i].Field < preds[j].Field
		}
		if preds[i].Op != preds[j].Op {
			return preds[i].Op < preds[j].Op
		}
		return preds[i].Value < preds[j].Value
	})
	return preds
}

// splitKey splits "price[gte]" into ("price", "gte"). A plain key is an
// equality.
func splitKey(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	return key[:open], key[open+1 : len(key)-1]
}

func buildSort(raw string) []SortKey {
	var keys []SortKey
	for _, part := range splitList(raw) {
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimLeft(part, "-+")
		if field == "" {
			continue
		}
		keys = append(keys, SortKey{Field: field, Desc: desc})
	}
	if len(keys) == 0 {
		return []SortKey{{Field: "createdAt", Desc: true}}
	}
	return keys
}

func buildProjection(raw string) Projection {
	var p Projection
	for _, part := range splitList(raw) {
		if strings.HasPrefix(part, "-") {
			if f := strings.TrimPrefix(part, "-"); f != "" {
				p.Exclude = append(p.Exclude, f)
			}
			continue
		}
		p.Include = append(p.Include, part)
	}
	if len(p.Include) == 0 && len(p.Exclude) == 0 {
		p.Exclude = []string{"updatedAt"}
	}
	return p
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
