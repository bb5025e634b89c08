package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FieldType tags the shape of a form field's value.
type FieldType string

const (
	FieldText           FieldType = "text"
	FieldArea           FieldType = "area"
	FieldNumber         FieldType = "number"
	FieldMoney          FieldType = "money"
	FieldSelect         FieldType = "select"
	FieldFormDataSelect FieldType = "form-data-select"
	FieldDate           FieldType = "date"
	FieldDatetime       FieldType = "datetime"
	FieldCheck          FieldType = "check"
	FieldMap            FieldType = "map"
	FieldFile           FieldType = "file"
	FieldImage          FieldType = "image"
	FieldHotspot        FieldType = "hotspot"
	FieldArray          FieldType = "array"
	FieldDone           FieldType = "done"
)

// FieldValue is a tagged value stored in a record's data map. The variant
// shape of Value is determined by Type; values with an unrecognized tag are
// treated as opaque text for search and sort purposes.
type FieldValue struct {
	Value interface{} `json:"value" firestore:"value"`
	Type  FieldType   `json:"type" firestore:"type"`
}

// ErrSkipValue signals that a raw cell cannot be coerced to the target type
// and the field should be omitted from the write. A single bad cell must not
// abort a bulk import.
var ErrSkipValue = errors.New("value cannot be coerced to target type")

// trueTokens is the fixed set of inputs recognized as boolean true,
// case-insensitive. Everything else coerces to false.
var trueTokens = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "sim": {}, "y": {}, "s": {}, "x": {},
}

var hotspotSelection = regexp.MustCompile(`^hotspot(\d+):(.*)$`)

// Coerce converts a raw imported value into the variant shape required by
// the target field type. Numeric and date failures return ErrSkipValue so
// callers drop the single field instead of failing the whole row.
func Coerce(raw interface{}, t FieldType) (interface{}, error) {
	if raw == nil {
		raw = ""
	}
	switch t {
	case FieldNumber, FieldMoney:
		if n, ok := raw.(float64); ok {
			return n, nil
		}
		if n, ok := raw.(int); ok {
			return float64(n), nil
		}
		if n, ok := ParseDecimal(stringify(raw)); ok {
			return n, nil
		}
		return nil, ErrSkipValue
	case FieldCheck, FieldDone:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		_, ok := trueTokens[strings.ToLower(strings.TrimSpace(stringify(raw)))]
		return ok, nil
	case FieldDate, FieldDatetime:
		iso, ok := parseToISO(raw)
		if !ok {
			return nil, ErrSkipValue
		}
		return iso, nil
	case FieldArray:
		return coerceArray(raw), nil
	case FieldMap:
		return coerceLatLng(raw), nil
	case FieldFile, FieldImage:
		if s, ok := raw.(string); ok && strings.HasPrefix(s, "http") {
			return fileRefFromURL(s), nil
		}
		return raw, nil
	case FieldHotspot:
		if s, ok := raw.(string); ok {
			return DecodeHotspotSelection(s), nil
		}
		return raw, nil
	default:
		// text, area, select, form-data-select and unknown tags: opaque text.
		return stringify(raw), nil
	}
}

// ParseDecimal parses a plain or comma-decimal number ("1234.56" and
// "1.234,56" both yield 1234.56).
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		// Comma-decimal input: dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// EncodeHotspotSelection encodes a chosen option for the hotspot at the given
// index as stored on the wire.
func EncodeHotspotSelection(index int, option string) string {
	return fmt.Sprintf("hotspot%d:%s", index, option)
}

// DecodeHotspotSelection strips the positional prefix from an encoded hotspot
// selection, returning the bare option text used for search and sort. Values
// without the prefix pass through unchanged.
func DecodeHotspotSelection(s string) string {
	if m := hotspotSelection.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[2])
	}
	return s
}

func coerceArray(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringify(item))
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []string{}
	}
}

func coerceLatLng(raw interface{}) interface{} {
	if m, ok := raw.(map[string]interface{}); ok {
		if _, hasLat := m["lat"]; hasLat {
			if _, hasLng := m["lng"]; hasLng {
				return m
			}
		}
	}
	if s, ok := raw.(string); ok && strings.Contains(s, ",") {
		parts := strings.SplitN(s, ",", 2)
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 == nil && err2 == nil {
			return map[string]interface{}{"lat": lat, "lng": lng}
		}
	}
	return raw
}

func fileRefFromURL(raw string) map[string]interface{} {
	name := raw
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if decoded, err := url.QueryUnescape(name); err == nil {
		name = decoded
	}
	return map[string]interface{}{"url": raw, "name": name}
}

// dateLayouts covers the encodings seen in imported spreadsheets.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

func parseToISO(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(time.RFC3339), true
			}
		}
		return "", false
	default:
		return "", false
	}
}

// stringify renders any raw value the way list search displays it: arrays
// join with ", ", lat/lng pairs render as "lat, lng", other objects fall
// back to JSON.
func stringify(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ", ")
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		if lat, ok := v["lat"]; ok {
			if lng, ok := v["lng"]; ok {
				return fmt.Sprintf("%v, %v", lat, lng)
			}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SearchText reports whether the value's display form contains the query,
// case-insensitive. Hotspot selections are matched against the bare option.
func SearchText(value interface{}, query string) bool {
	s := stringify(value)
	if str, ok := value.(string); ok {
		s = DecodeHotspotSelection(str)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}

// SearchNumber extracts a comparable number from a stored value, tolerating
// comma decimals and encoded hotspot selections. The second return is false
// when no number can be derived.
func SearchNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return ParseDecimal(DecodeHotspotSelection(v))
	case []interface{}:
		if len(v) > 0 {
			return SearchNumber(v[0])
		}
		return 0, false
	default:
		return 0, false
	}
}
