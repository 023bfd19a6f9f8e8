package basket

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/etnz/basket/date"
)

// jsonLine writes a JSONL record keeping the fields in the order they are
// added. Its zero value is an empty record.
type jsonLine struct {
	buf bytes.Buffer
	err error
}

// Field adds key with its JSON value.
func (l *jsonLine) Field(key string, value any) *jsonLine {
	if l.err != nil {
		return l
	}
	v, err := json.Marshal(value)
	if err != nil {
		l.err = fmt.Errorf("field %q: %w", key, err)
		return l
	}
	k, _ := json.Marshal(key)
	if l.buf.Len() > 0 {
		l.buf.WriteByte(',')
	}
	l.buf.Write(k)
	l.buf.WriteByte(':')
	l.buf.Write(v)
	return l
}

// Date adds key unless d is the zero date.
func (l *jsonLine) Date(key string, d date.Date) *jsonLine {
	if d.IsZero() {
		return l
	}
	return l.Field(key, d)
}

// Currency adds the "currency" field, unless the currency of m is weak.
func (l *jsonLine) Currency(m Money) *jsonLine {
	if m.Currency() == "" {
		return l
	}
	return l.Field("currency", m.Currency())
}

// Bytes returns the record followed by a newline, or the first error.
func (l *jsonLine) Bytes() ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]byte, 0, l.buf.Len()+3)
	out = append(out, '{')
	out = append(out, l.buf.Bytes()...)
	return append(out, '}', '\n'), nil
}
