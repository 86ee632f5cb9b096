package docstore

import (
	"cmp"
	"slices"
	"time"
)

// MatchesFilters reports whether the document satisfies every equality
// filter. Shared by the backends that evaluate queries client-side
// (memstore, badgerstore); mongostore pushes filters to the server.
func MatchesFilters(d Document, filters []Filter) bool {
	for _, f := range filters {
		if CompareValues(d[f.Field], f.Value) != 0 {
			return false
		}
	}
	return true
}

// SortDocuments orders documents in place by the given field. The sort
// is stable; documents missing the field sort first ascending.
func SortDocuments(docs []Document, order *OrderBy) {
	if order == nil {
		return
	}
	slices.SortStableFunc(docs, func(a, b Document) int {
		c := CompareValues(a[order.Field], b[order.Field])
		if order.Desc {
			return -c
		}
		return c
	})
}

// CompareValues is a three-way comparison over the value types a
// document field can carry. Nil sorts before everything; mismatched
// types compare by type name so the order is total.
func CompareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	if at, aok := asTime(a); aok {
		if bt, bok := asTime(b); bok {
			return at.Compare(bt)
		}
	}
	if af, aok := asNumber(a); aok {
		if bf, bok := asNumber(b); bok {
			return cmp.Compare(af, bf)
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}

	return cmp.Compare(typeName(a), typeName(b))
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case bool:
		return "bool"
	case string:
		return "string"
	case time.Time:
		return "time"
	case []any:
		return "list"
	case map[string]any, Document:
		return "map"
	default:
		return "other"
	}
}
