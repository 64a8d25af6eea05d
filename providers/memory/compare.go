package memory

import (
	"encoding/json"
	"time"

	"github.com/oxhq/searchq/core"
)

// scalar is the normalized form record values are compared in.
type scalar struct {
	kind core.Kind
	num  float64
	str  string
	b    bool
	ts   time.Time
}

// normalize classifies a host value into a comparable scalar. The
// second return is false for values with no scalar interpretation
// (maps, slices).
func normalize(v any) (scalar, bool) {
	switch t := v.(type) {
	case nil:
		return scalar{kind: core.KindNull}, true
	case bool:
		return scalar{kind: core.KindBool, b: t}, true
	case int:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case int8:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case int16:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case int32:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case int64:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case uint:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case uint32:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case uint64:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case float32:
		return scalar{kind: core.KindNumber, num: float64(t)}, true
	case float64:
		return scalar{kind: core.KindNumber, num: t}, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return scalar{}, false
		}
		return scalar{kind: core.KindNumber, num: f}, true
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return scalar{kind: core.KindTime, ts: ts, str: t}, true
		}
		return scalar{kind: core.KindString, str: t}, true
	case time.Time:
		return scalar{kind: core.KindTime, ts: t}, true
	}
	return scalar{}, false
}

// fromValue converts a query Value into the same normalized form.
func fromValue(v core.Value) (scalar, bool) {
	switch v.Kind() {
	case core.KindNull:
		return scalar{kind: core.KindNull}, true
	case core.KindBool:
		return scalar{kind: core.KindBool, b: v.BoolVal()}, true
	case core.KindNumber:
		return scalar{kind: core.KindNumber, num: v.NumberVal()}, true
	case core.KindString:
		return scalar{kind: core.KindString, str: v.StringVal()}, true
	case core.KindTime:
		return scalar{kind: core.KindTime, ts: v.TimeVal()}, true
	}
	return scalar{}, false
}

// equal reports value equality. Mixed kinds are simply unequal.
func equal(a, b scalar) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case core.KindNull:
		return true
	case core.KindBool:
		return a.b == b.b
	case core.KindNumber:
		return a.num == b.num
	case core.KindString:
		return a.str == b.str
	case core.KindTime:
		return a.ts.Equal(b.ts)
	}
	return false
}

// order compares two scalars of an ordered kind: natural for numbers,
// lexicographic for strings, chronological for timestamps. Mixed or
// unordered kinds report ok=false and the caller treats the pair as
// never ordered.
func order(a, b scalar) (int, bool) {
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case core.KindNumber:
		switch {
		case a.num < b.num:
			return -1, true
		case a.num > b.num:
			return 1, true
		}
		return 0, true
	case core.KindString:
		switch {
		case a.str < b.str:
			return -1, true
		case a.str > b.str:
			return 1, true
		}
		return 0, true
	case core.KindTime:
		switch {
		case a.ts.Before(b.ts):
			return -1, true
		case a.ts.After(b.ts):
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
