// Package compact implements the token-frugal wire form used when feeding
// market data and portfolio views to the decision model.
//
// The grammar is a restricted superset of JSON:
//
//   - object keys are emitted unquoted when they match [A-Za-z0-9_-]+,
//     quoted (JSON string syntax) otherwise;
//   - string values are emitted unquoted unless they contain one of the
//     delimiter characters ` ,:{}[]"'` or are empty;
//   - numbers, booleans and null are emitted as in JSON;
//   - no insignificant whitespace is produced;
//   - object keys are sorted so the same value always encodes to the
//     same string;
//   - below nesting depth 3 values fall back to standard compact JSON.
//
// Decode accepts everything Encode produces, plus regular JSON.
package compact

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// maxDepth is the nesting level beyond which Encode falls back to plain JSON.
const maxDepth = 3

const valueDelimiters = " ,:{}[]\"'"

// Encode renders v in the compact form.
func Encode(v any) string {
	var sb strings.Builder
	encode(&sb, v, 0)
	return sb.String()
}

func encode(sb *strings.Builder, v any, depth int) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		if val {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case string:
		encodeString(sb, val)
	case decimal.Decimal:
		sb.WriteString(val.String())
	case json.Number:
		sb.WriteString(val.String())
	case float64:
		sb.WriteString(formatFloat(val))
	case float32:
		sb.WriteString(formatFloat(float64(val)))
	case int:
		sb.WriteString(strconv.Itoa(val))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case map[string]any:
		if depth > maxDepth {
			writeJSON(sb, val)
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			encodeKey(sb, k)
			sb.WriteByte(':')
			encode(sb, val[k], depth+1)
		}
		sb.WriteByte('}')
	case []any:
		if depth > maxDepth {
			writeJSON(sb, val)
			return
		}
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			encode(sb, item, depth+1)
		}
		sb.WriteByte(']')
	default:
		writeJSON(sb, val)
	}
}

func encodeKey(sb *strings.Builder, k string) {
	if isBareKey(k) {
		sb.WriteString(k)
		return
	}
	writeJSON(sb, k)
}

func encodeString(sb *strings.Builder, s string) {
	if s == "" || strings.ContainsAny(s, valueDelimiters) {
		writeJSON(sb, s)
		return
	}
	sb.WriteString(s)
}

func isBareKey(k string) bool {
	if k == "" {
		return false
	}
	for _, r := range k {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeJSON(sb *strings.Builder, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		sb.WriteString("null")
		return
	}
	sb.Write(b)
}

// Decode parses a compact-encoded document back into maps, slices, strings,
// float64 numbers, booleans and nil.
func Decode(s string) (any, error) {
	d := &decoder{src: s}
	d.skipSpace()
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	d.skipSpace()
	if d.pos != len(d.src) {
		return nil, fmt.Errorf("compact: trailing data at offset %d", d.pos)
	}
	return v, nil
}

type decoder struct {
	src string
	pos int
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

func (d *decoder) value() (any, error) {
	if d.pos >= len(d.src) {
		return nil, fmt.Errorf("compact: unexpected end of input")
	}
	switch d.src[d.pos] {
	case '{':
		return d.object()
	case '[':
		return d.array()
	case '"':
		return d.quotedString()
	default:
		return d.bareValue()
	}
}

func (d *decoder) object() (map[string]any, error) {
	d.pos++ // '{'
	out := make(map[string]any)
	d.skipSpace()
	if d.pos < len(d.src) && d.src[d.pos] == '}' {
		d.pos++
		return out, nil
	}
	for {
		d.skipSpace()
		key, err := d.objectKey()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		if d.pos >= len(d.src) || d.src[d.pos] != ':' {
			return nil, fmt.Errorf("compact: expected ':' after key %q at offset %d", key, d.pos)
		}
		d.pos++
		d.skipSpace()
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out[key] = v
		d.skipSpace()
		if d.pos >= len(d.src) {
			return nil, fmt.Errorf("compact: unterminated object")
		}
		switch d.src[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("compact: unexpected %q in object at offset %d", d.src[d.pos], d.pos)
		}
	}
}

func (d *decoder) objectKey() (string, error) {
	if d.pos < len(d.src) && d.src[d.pos] == '"' {
		return d.quotedString()
	}
	start := d.pos
	for d.pos < len(d.src) && d.src[d.pos] != ':' {
		d.pos++
	}
	key := strings.TrimSpace(d.src[start:d.pos])
	if key == "" {
		return "", fmt.Errorf("compact: empty object key at offset %d", start)
	}
	return key, nil
}

func (d *decoder) array() ([]any, error) {
	d.pos++ // '['
	out := []any{}
	d.skipSpace()
	if d.pos < len(d.src) && d.src[d.pos] == ']' {
		d.pos++
		return out, nil
	}
	for {
		d.skipSpace()
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		d.skipSpace()
		if d.pos >= len(d.src) {
			return nil, fmt.Errorf("compact: unterminated array")
		}
		switch d.src[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return out, nil
		default:
			return nil, fmt.Errorf("compact: unexpected %q in array at offset %d", d.src[d.pos], d.pos)
		}
	}
}

func (d *decoder) quotedString() (string, error) {
	start := d.pos
	d.pos++ // opening quote
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case '\\':
			d.pos += 2
		case '"':
			d.pos++
			var s string
			if err := json.Unmarshal([]byte(d.src[start:d.pos]), &s); err != nil {
				return "", fmt.Errorf("compact: bad string literal at offset %d: %w", start, err)
			}
			return s, nil
		default:
			d.pos++
		}
	}
	return "", fmt.Errorf("compact: unterminated string at offset %d", start)
}

func (d *decoder) bareValue() (any, error) {
	start := d.pos
	for d.pos < len(d.src) && !strings.ContainsRune(",:{}[]", rune(d.src[d.pos])) {
		d.pos++
	}
	tok := strings.TrimSpace(d.src[start:d.pos])
	switch tok {
	case "":
		return nil, fmt.Errorf("compact: empty value at offset %d", start)
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}
	return tok, nil
}
