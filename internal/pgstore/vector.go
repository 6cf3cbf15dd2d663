package pgstore

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Vector maps a []float32 onto the pgvector text representation, e.g.
// "[0.1,0.2,0.3]".
type Vector []float32

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func (v Vector) Value() (driver.Value, error) {
	return v.String(), nil
}

func (v *Vector) Scan(src any) error {
	var raw string
	switch s := src.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	case nil:
		*v = nil
		return nil
	default:
		return fmt.Errorf("unsupported vector source type %T", src)
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make(Vector, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("malformed vector element %q: %w", p, err)
		}
		out = append(out, float32(f))
	}
	*v = out
	return nil
}
