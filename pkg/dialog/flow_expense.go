package dialog

import (
	"strings"
	"time"

	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateExpenseCategory       State = "expense_category"
	StateExpenseCustomCategory State = "expense_custom_category"
	StateExpenseName           State = "expense_name"
	StateExpenseAmount         State = "expense_amount"
	StateExpenseDate           State = "expense_date"
	StateExpenseNote           State = "expense_note"
)

const expenseDateLayout = "2006-01-02"

func expenseFlow() *Flow {
	return &Flow{
		Kind: record.KindExpense,
		Order: []Step{
			{
				State:    StateExpenseCategory,
				Prompt:   "Category? (food, transport, entertainment, health, shopping, utilities, other)",
				Field:    "category",
				Validate: choice("food", "transport", "entertainment", "health", "shopping", "utilities", "other"),
				Next: func(d Draft) State {
					if d.Text("category") == "other" {
						return StateExpenseCustomCategory
					}
					return StateExpenseName
				},
			},
			{
				// Overwrites the "other" placeholder with free text.
				State:    StateExpenseCustomCategory,
				Prompt:   "Name the category.",
				Field:    "category",
				Validate: nonEmpty,
				Next:     func(Draft) State { return StateExpenseName },
			},
			{
				State:    StateExpenseName,
				Prompt:   "What was the expense?",
				Field:    "name",
				Validate: nonEmpty,
			},
			{
				State:    StateExpenseAmount,
				Prompt:   "How much?",
				Field:    "amount",
				Validate: amount,
			},
			{
				State:  StateExpenseDate,
				Prompt: "When? DD.MM, DD.MM.YYYY, or \"today\".",
				Field:  "date",
				Validate: func(in Input, _ Draft, env Env) (Value, error) {
					if strings.EqualFold(strings.TrimSpace(in.Text), "today") {
						y, m, day := env.Now.In(env.Location).Date()
						return TimeValue(time.Date(y, m, day, 0, 0, 0, 0, env.Location)), nil
					}
					t, err := ParseDate(in.Text, env.Now.In(env.Location))
					if err != nil {
						return Value{}, err
					}
					return TimeValue(t), nil
				},
			},
			{
				State:    StateExpenseNote,
				Prompt:   "A note? (or skip)",
				Field:    "note",
				Optional: true,
				Validate: nonEmpty,
			},
		},
		Commit:   commitExpense,
		Editable: expenseEditable,
		Patch:    patchExpense,
	}
}

var expenseEditable = map[string]State{
	"category": StateExpenseCategory,
	"name":     StateExpenseName,
	"amount":   StateExpenseAmount,
	"date":     StateExpenseDate,
	"note":     StateExpenseNote,
}

func commitExpense(d Draft, _ Env) record.Fields {
	f := record.Fields{}
	putText(f, d, "category")
	putText(f, d, "name")
	putNumber(f, d, "amount")
	if v, ok := d.Value("date"); ok && v.Kind == ValueTime {
		f["date"] = v.Time.Format(expenseDateLayout)
	}
	putText(f, d, "note")
	return f
}

func patchExpense(field string, v Value) (record.Patch, error) {
	p := record.ExpensePatch{}
	switch field {
	case "category":
		p.Category = strPtr(v)
	case "name":
		p.Name = strPtr(v)
	case "amount":
		p.Amount = numPtr(v)
	case "date":
		if v.Kind != ValueTime {
			return nil, invalidf("date must be a date")
		}
		s := v.Time.Format(expenseDateLayout)
		p.Date = &s
	case "note":
		p.Note = strPtr(v)
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
