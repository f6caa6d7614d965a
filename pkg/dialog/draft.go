package dialog

import (
	"time"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// ValueKind tags the payload carried by a Value.
type ValueKind string

const (
	// ValueAbsent records that an optional step was deliberately skipped.
	// It is distinct from the field never having been answered.
	ValueAbsent ValueKind = "absent"
	ValueText   ValueKind = "text"
	ValueNumber ValueKind = "number"
	ValueTime   ValueKind = "time"
	ValueCoords ValueKind = "coords"
)

// Value is one validated wizard answer.
type Value struct {
	Kind   ValueKind   `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Number float64     `json:"number,omitempty"`
	Time   time.Time   `json:"time,omitempty"`
	Coords Coordinates `json:"coords,omitempty"`
}

func AbsentValue() Value {
	return Value{Kind: ValueAbsent}
}

func TextValue(text string) Value {
	return Value{Kind: ValueText, Text: text}
}

func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Number: n}
}

func TimeValue(t time.Time) Value {
	return Value{Kind: ValueTime, Time: t}
}

func CoordsValue(c Coordinates) Value {
	return Value{Kind: ValueCoords, Coords: c}
}

// Absent reports whether the value is an explicit skip.
func (v Value) Absent() bool {
	return v.Kind == ValueAbsent
}

// Draft accumulates validated answers for one in-flight wizard. It lives in
// the Store until the wizard commits or is cancelled and is never visible to
// the persistence gateway.
type Draft struct {
	UserID    int64            `json:"user_id"`
	Kind      record.Kind      `json:"kind"`
	Fields    map[string]Value `json:"fields"`
	StartedAt time.Time        `json:"started_at"`
}

func NewDraft(userID int64, kind record.Kind, now time.Time) Draft {
	return Draft{
		UserID:    userID,
		Kind:      kind,
		Fields:    make(map[string]Value),
		StartedAt: now,
	}
}

func (d *Draft) Set(field string, v Value) {
	if d.Fields == nil {
		d.Fields = make(map[string]Value)
	}
	d.Fields[field] = v
}

// Value returns the answer stored for field, if any. An explicit skip is
// stored and therefore found.
func (d Draft) Value(field string) (Value, bool) {
	v, ok := d.Fields[field]
	return v, ok
}

// Text returns the text answer for field, or "" when the field is missing,
// skipped, or not textual.
func (d Draft) Text(field string) string {
	v, ok := d.Fields[field]
	if !ok || v.Kind != ValueText {
		return ""
	}
	return v.Text
}

// Number returns the numeric answer for field.
func (d Draft) Number(field string) (float64, bool) {
	v, ok := d.Fields[field]
	if !ok || v.Kind != ValueNumber {
		return 0, false
	}
	return v.Number, true
}
