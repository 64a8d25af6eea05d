package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Kind discriminates the variants of the Value tagged union.
type Kind int

const (
	KindMissing Kind = iota // absent value (unary operators)
	KindNull
	KindBool
	KindNumber
	KindString
	KindTime
	KindList
	KindGeometry
	KindBBox
	KindRange
	KindDWithin
	KindJSON
)

var kindNames = map[Kind]string{
	KindMissing:  "missing",
	KindNull:     "null",
	KindBool:     "bool",
	KindNumber:   "number",
	KindString:   "string",
	KindTime:     "timestamp",
	KindList:     "list",
	KindGeometry: "geometry",
	KindBBox:     "bbox",
	KindRange:    "range",
	KindDWithin:  "dwithin",
	KindJSON:     "json",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is the tagged union carried by a Condition. The zero Value has
// KindMissing and stands for "no value", which is what unary operators
// require.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	ts   time.Time
	list []Value
	geom orb.Geometry
	bbox [4]float64
	dist float64
	raw  json.RawMessage
}

// Constructors.

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

func Geometry(g orb.Geometry) Value {
	return Value{kind: KindGeometry, geom: g}
}

func JSONDoc(raw json.RawMessage) Value {
	return Value{kind: KindJSON, raw: raw}
}

// BBox builds a bounding-box value from (minX, minY, maxX, maxY).
func BBox(minX, minY, maxX, maxY float64) Value {
	return Value{kind: KindBBox, bbox: [4]float64{minX, minY, maxX, maxY}}
}

// Range builds an inclusive between-pair.
func Range(lo, hi Value) Value {
	return Value{kind: KindRange, list: []Value{lo, hi}}
}

// DWithin pairs a geometry with a distance in meters.
func DWithin(g orb.Geometry, meters float64) Value {
	return Value{kind: KindDWithin, geom: g, dist: meters}
}

func (v Value) Kind() Kind                { return v.kind }
func (v Value) IsMissing() bool           { return v.kind == KindMissing }
func (v Value) BoolVal() bool             { return v.b }
func (v Value) NumberVal() float64        { return v.num }
func (v Value) StringVal() string         { return v.str }
func (v Value) TimeVal() time.Time        { return v.ts }
func (v Value) ListVal() []Value          { return v.list }
func (v Value) GeometryVal() orb.Geometry { return v.geom }
func (v Value) BBoxVal() [4]float64       { return v.bbox }
func (v Value) DistanceVal() float64      { return v.dist }
func (v Value) RawJSON() json.RawMessage  { return v.raw }

// AsRange reports the (lo, hi) pair of a range value. A two-element list
// coerces, matching the wire format where pairs arrive as arrays.
func (v Value) AsRange() (lo, hi Value, ok bool) {
	switch v.kind {
	case KindRange:
		return v.list[0], v.list[1], true
	case KindList:
		if len(v.list) == 2 {
			return v.list[0], v.list[1], true
		}
	}
	return Value{}, Value{}, false
}

// AsBBox reports the 4-tuple of a bbox value. A four-number list coerces.
func (v Value) AsBBox() ([4]float64, bool) {
	switch v.kind {
	case KindBBox:
		return v.bbox, true
	case KindList:
		if len(v.list) != 4 {
			break
		}
		var box [4]float64
		for i, e := range v.list {
			if e.kind != KindNumber {
				return box, false
			}
			box[i] = e.num
		}
		return box, true
	}
	return [4]float64{}, false
}

// AsDWithin reports the (geometry, meters) pair. A [geometry, number]
// list coerces.
func (v Value) AsDWithin() (orb.Geometry, float64, bool) {
	switch v.kind {
	case KindDWithin:
		return v.geom, v.dist, true
	case KindList:
		if len(v.list) == 2 && v.list[0].kind == KindGeometry && v.list[1].kind == KindNumber {
			return v.list[0].geom, v.list[1].num, true
		}
	}
	return nil, 0, false
}

// AsGeometry reports the geometry payload of a geometry or dwithin value.
func (v Value) AsGeometry() (orb.Geometry, bool) {
	if v.kind == KindGeometry || v.kind == KindDWithin {
		return v.geom, true
	}
	return nil, false
}

// Equal reports structural equality of two values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing, KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindTime:
		return v.ts.Equal(o.ts)
	case KindList, KindRange:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindGeometry:
		return orb.Equal(v.geom, o.geom)
	case KindBBox:
		return v.bbox == o.bbox
	case KindDWithin:
		return v.dist == o.dist && orb.Equal(v.geom, o.geom)
	case KindJSON:
		return string(v.raw) == string(o.raw)
	}
	return false
}

// MarshalJSON renders the value in its wire shape: pairs and boxes become
// arrays, timestamps RFC 3339 strings, geometries GeoJSON objects.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMissing, KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return json.Marshal(int64(v.num))
		}
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindTime:
		return json.Marshal(v.ts.Format(time.RFC3339Nano))
	case KindList, KindRange:
		return json.Marshal(v.list)
	case KindGeometry:
		return geojson.NewGeometry(v.geom).MarshalJSON()
	case KindBBox:
		return json.Marshal([]float64{v.bbox[0], v.bbox[1], v.bbox[2], v.bbox[3]})
	case KindDWithin:
		return json.Marshal([]Value{Geometry(v.geom), Number(v.dist)})
	case KindJSON:
		return v.raw, nil
	}
	return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
}

// UnmarshalJSON decodes a wire value. Strings that parse as RFC 3339
// become timestamps; objects carrying a GeoJSON "type" become geometries;
// any other object is kept as a raw JSON document.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := valueFromJSON(raw, data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func valueFromJSON(raw any, data []byte) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return Time(ts), nil
		}
		return String(t), nil
	case []any:
		list := make([]Value, 0, len(t))
		for _, e := range t {
			sub, err := json.Marshal(e)
			if err != nil {
				return Value{}, err
			}
			ev, err := valueFromJSON(e, sub)
			if err != nil {
				return Value{}, err
			}
			list = append(list, ev)
		}
		return List(list...), nil
	case map[string]any:
		if isGeoJSONType(t["type"]) {
			geo, err := geojson.UnmarshalGeometry(data)
			if err != nil {
				return Value{}, fmt.Errorf("invalid geometry: %w", err)
			}
			return Geometry(geo.Geometry()), nil
		}
		compact := append(json.RawMessage(nil), data...)
		return JSONDoc(compact), nil
	}
	return Value{}, fmt.Errorf("unsupported value literal %T", raw)
}

var geoJSONTypes = map[string]struct{}{
	"Point": {}, "LineString": {}, "Polygon": {},
	"MultiPoint": {}, "MultiLineString": {}, "MultiPolygon": {},
}

func isGeoJSONType(t any) bool {
	s, ok := t.(string)
	if !ok {
		return false
	}
	_, ok = geoJSONTypes[s]
	return ok
}

// FromGo converts a host-native value into a Value. Maps become raw
// JSON documents; unhandled types are an error.
func FromGo(val any) (Value, error) {
	switch t := val.(type) {
	case Value:
		return t, nil
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case string:
		return String(t), nil
	case time.Time:
		return Time(t), nil
	case orb.Geometry:
		return Geometry(t), nil
	case json.RawMessage:
		return JSONDoc(t), nil
	case []Value:
		return List(t...), nil
	case []any:
		list := make([]Value, 0, len(t))
		for _, e := range t {
			ev, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			list = append(list, ev)
		}
		return List(list...), nil
	case []string:
		list := make([]Value, 0, len(t))
		for _, s := range t {
			list = append(list, String(s))
		}
		return List(list...), nil
	case []int:
		list := make([]Value, 0, len(t))
		for _, n := range t {
			list = append(list, Number(float64(n)))
		}
		return List(list...), nil
	case []float64:
		list := make([]Value, 0, len(t))
		for _, n := range t {
			list = append(list, Number(n))
		}
		return List(list...), nil
	case map[string]any:
		raw, err := json.Marshal(t)
		if err != nil {
			return Value{}, err
		}
		return JSONDoc(raw), nil
	}
	return Value{}, fmt.Errorf("cannot convert %T to a query value", val)
}
