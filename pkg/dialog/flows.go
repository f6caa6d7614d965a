package dialog

import (
	"strings"

	"github.com/chatassist/dialog-manager/pkg/record"
)

// Flows returns the built-in wizard per record kind.
func Flows() map[record.Kind]*Flow {
	flows := []*Flow{
		placeFlow(),
		expenseFlow(),
		mediaFlow(),
		noteFlow(),
		wishlistFlow(),
		tipsFlow(),
		reminderFlow(),
	}
	m := make(map[record.Kind]*Flow, len(flows))
	for _, f := range flows {
		m[f.Kind] = f
	}
	return m
}

// Shared step validators.

func textAnswer(in Input) (string, error) {
	s := strings.TrimSpace(in.Text)
	if s == "" {
		return "", invalidf("please answer with text")
	}
	return s, nil
}

func nonEmpty(in Input, _ Draft, _ Env) (Value, error) {
	s, err := textAnswer(in)
	if err != nil {
		return Value{}, err
	}
	return TextValue(s), nil
}

// titled is nonEmpty with the first letter upper-cased, for display names.
func titled(in Input, _ Draft, _ Env) (Value, error) {
	s, err := textAnswer(in)
	if err != nil {
		return Value{}, err
	}
	return TextValue(capitalize(s)), nil
}

func choice(choices ...string) func(Input, Draft, Env) (Value, error) {
	return func(in Input, _ Draft, _ Env) (Value, error) {
		c, err := oneOf(in.Text, choices...)
		if err != nil {
			return Value{}, err
		}
		return TextValue(c), nil
	}
}

func amount(in Input, _ Draft, _ Env) (Value, error) {
	n, err := ParseAmount(in.Text)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(n), nil
}

// Commit helpers shared by the flows.

func putText(f record.Fields, d Draft, field string) {
	if v, ok := d.Value(field); ok && v.Kind == ValueText {
		f[field] = v.Text
	}
}

func putNumber(f record.Fields, d Draft, field string) {
	if v, ok := d.Value(field); ok && v.Kind == ValueNumber {
		f[field] = v.Number
	}
}

func putWhole(f record.Fields, d Draft, field string) {
	if v, ok := d.Value(field); ok && v.Kind == ValueNumber {
		f[field] = int(v.Number)
	}
}

func strPtr(v Value) *string {
	if v.Kind != ValueText {
		return nil
	}
	s := v.Text
	return &s
}

func numPtr(v Value) *float64 {
	if v.Kind != ValueNumber {
		return nil
	}
	n := v.Number
	return &n
}

func intPtr(v Value) *int {
	if v.Kind != ValueNumber {
		return nil
	}
	n := int(v.Number)
	return &n
}

func unknownEditField(field string) error {
	return invalidf("%q is not an editable field", field)
}
