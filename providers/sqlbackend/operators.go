package sqlbackend

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/oxhq/searchq/core"
)

const geometrySRID = 4326

// emitOperator renders one condition to a parameterized fragment.
// Scalar values always travel as bound parameters; only schema-known
// identifiers and fixed operator syntax reach the SQL text.
func emitOperator(tag, column string, v core.Value) (string, []any, error) {
	switch tag {
	case "=":
		if v.Kind() == core.KindNull {
			return fmt.Sprintf("%s IS NULL", column), nil, nil
		}
		return fmt.Sprintf("%s = ?", column), []any{param(v)}, nil
	case "!=":
		if v.Kind() == core.KindNull {
			return fmt.Sprintf("%s IS NOT NULL", column), nil, nil
		}
		return fmt.Sprintf("%s <> ?", column), []any{param(v)}, nil
	case ">", "<", ">=", "<=":
		return fmt.Sprintf("%s %s ?", column, tag), []any{param(v)}, nil

	case "in", "not_in":
		list := v.ListVal()
		if len(list) == 0 {
			// Empty membership is trivially false (or true negated).
			if tag == "not_in" {
				return "1 = 1", nil, nil
			}
			return "1 = 0", nil, nil
		}
		holes, params := expand(list)
		op := "IN"
		if tag == "not_in" {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", column, op, holes), params, nil

	case "all":
		// Field-set contained in value-set, for array-typed columns.
		holes, params := expand(v.ListVal())
		return fmt.Sprintf("%s <@ ARRAY[%s]", column, holes), params, nil

	case "between", "not_between":
		lo, hi, ok := v.AsRange()
		if !ok {
			return "", nil, translationFailed(tag, "value is not a range pair")
		}
		op := "BETWEEN"
		if tag == "not_between" {
			op = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s ? AND ?", column, op), []any{param(lo), param(hi)}, nil

	case "like":
		return fmt.Sprintf("%s LIKE ?", column), []any{v.StringVal()}, nil
	case "not_like":
		return fmt.Sprintf("%s NOT LIKE ?", column), []any{v.StringVal()}, nil
	case "ilike":
		return fmt.Sprintf("LOWER(%s) LIKE ?", column), []any{strings.ToLower(v.StringVal())}, nil
	case "contains":
		return fmt.Sprintf("%s LIKE ? ESCAPE '\\'", column), []any{"%" + escapeLike(v.StringVal()) + "%"}, nil
	case "icontains":
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column), []any{"%" + escapeLike(strings.ToLower(v.StringVal())) + "%"}, nil
	case "startswith":
		return fmt.Sprintf("%s LIKE ? ESCAPE '\\'", column), []any{escapeLike(v.StringVal()) + "%"}, nil
	case "istartswith":
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column), []any{escapeLike(strings.ToLower(v.StringVal())) + "%"}, nil
	case "endswith":
		return fmt.Sprintf("%s LIKE ? ESCAPE '\\'", column), []any{"%" + escapeLike(v.StringVal())}, nil
	case "iendswith":
		return fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '\\'", column), []any{"%" + escapeLike(strings.ToLower(v.StringVal()))}, nil
	case "regex":
		return fmt.Sprintf("%s ~ ?", column), []any{v.StringVal()}, nil
	case "iregex":
		return fmt.Sprintf("%s ~* ?", column), []any{v.StringVal()}, nil

	case "is_null":
		return fmt.Sprintf("%s IS NULL", column), nil, nil
	case "is_not_null":
		return fmt.Sprintf("%s IS NOT NULL", column), nil, nil
	case "is_empty":
		return fmt.Sprintf("(%s IS NULL OR %s = '')", column, column), nil, nil
	case "is_not_empty":
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", column, column), nil, nil

	case "jsonb_contains":
		return fmt.Sprintf("%s @> ?::jsonb", column), []any{jsonParam(v)}, nil
	case "jsonb_contained_by":
		return fmt.Sprintf("%s <@ ?::jsonb", column), []any{jsonParam(v)}, nil
	case "jsonb_has_key":
		// jsonb_exists is the ? operator in function form, which keeps
		// the placeholder rebinding unambiguous.
		return fmt.Sprintf("jsonb_exists(%s, ?)", column), []any{v.StringVal()}, nil
	case "jsonb_has_any_keys":
		holes, params := expand(v.ListVal())
		return fmt.Sprintf("jsonb_exists_any(%s, ARRAY[%s])", column, holes), params, nil
	case "jsonb_has_all_keys":
		holes, params := expand(v.ListVal())
		return fmt.Sprintf("jsonb_exists_all(%s, ARRAY[%s])", column, holes), params, nil
	case "jsonb_path_exists":
		return fmt.Sprintf("jsonb_path_exists(%s, ?::jsonpath)", column), []any{v.StringVal()}, nil

	case "intersects", "within", "contains_geom", "touches", "crosses",
		"overlaps", "disjoint", "geom_equals":
		geom, ok := v.AsGeometry()
		if !ok {
			return "", nil, translationFailed(tag, "value is not a geometry")
		}
		fn := stPredicates[tag]
		return fmt.Sprintf("%s(%s, ST_GeomFromText(?, %d))", fn, column, geometrySRID),
			[]any{wkt.MarshalString(geom)}, nil
	case "distance_lt":
		geom, dist, ok := v.AsDWithin()
		if !ok {
			return "", nil, translationFailed(tag, "value is not a (geometry, meters) pair")
		}
		return fmt.Sprintf("ST_Distance(%s, ST_GeomFromText(?, %d)) < ?", column, geometrySRID),
			[]any{wkt.MarshalString(geom), dist}, nil
	case "dwithin":
		geom, dist, ok := v.AsDWithin()
		if !ok {
			return "", nil, translationFailed(tag, "value is not a (geometry, meters) pair")
		}
		return fmt.Sprintf("ST_DWithin(%s, ST_GeomFromText(?, %d), ?)", column, geometrySRID),
			[]any{wkt.MarshalString(geom), dist}, nil
	case "bbox_intersects":
		box, ok := v.AsBBox()
		if !ok {
			return "", nil, translationFailed(tag, "value is not a bbox")
		}
		return fmt.Sprintf("%s && ST_MakeEnvelope(?, ?, ?, ?, %d)", column, geometrySRID),
			[]any{box[0], box[1], box[2], box[3]}, nil

	case "fts":
		return fmt.Sprintf("to_tsvector(%s) @@ plainto_tsquery(?)", column), []any{v.StringVal()}, nil
	case "fts_phrase":
		return fmt.Sprintf("to_tsvector(%s) @@ phraseto_tsquery(?)", column), []any{v.StringVal()}, nil
	}
	return "", nil, translationFailed(tag, "no SQL emission for operator")
}

var stPredicates = map[string]string{
	"intersects":    "ST_Intersects",
	"within":        "ST_Within",
	"contains_geom": "ST_Contains",
	"touches":       "ST_Touches",
	"crosses":       "ST_Crosses",
	"overlaps":      "ST_Overlaps",
	"disjoint":      "ST_Disjoint",
	"geom_equals":   "ST_Equals",
}

// param converts a scalar value into its bound-parameter form.
func param(v core.Value) any {
	switch v.Kind() {
	case core.KindNull:
		return nil
	case core.KindBool:
		return v.BoolVal()
	case core.KindNumber:
		return v.NumberVal()
	case core.KindString:
		return v.StringVal()
	case core.KindTime:
		return v.TimeVal()
	}
	return v.StringVal()
}

func jsonParam(v core.Value) any {
	if v.Kind() == core.KindJSON {
		return string(v.RawJSON())
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil
	}
	return string(raw)
}

// expand renders one placeholder per list element.
func expand(list []core.Value) (string, []any) {
	holes := make([]string, len(list))
	params := make([]any, len(list))
	for i, e := range list {
		holes[i] = "?"
		params[i] = param(e)
	}
	return strings.Join(holes, ", "), params
}

// escapeLike protects literal wildcards inside derived LIKE patterns.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func translationFailed(op, detail string) *core.BackendError {
	return &core.BackendError{Code: core.CodeTranslationFailed, Op: op, Detail: detail}
}
