package dialog

import (
	"github.com/chatassist/dialog-manager/pkg/finance"
	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateTipsAmount State = "tips_amount"
	StateTipsHours  State = "tips_hours"
)

func tipsFlow() *Flow {
	return &Flow{
		Kind: record.KindTips,
		Order: []Step{
			{
				State:    StateTipsAmount,
				Prompt:   "How much did the shift bring in?",
				Field:    "amount",
				Validate: amount,
			},
			{
				State:    StateTipsHours,
				Prompt:   "How many hours was the shift? (or skip)",
				Field:    "hours",
				Optional: true,
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					h, err := ParseHours(in.Text)
					if err != nil {
						return Value{}, err
					}
					return NumberValue(h), nil
				},
			},
		},
		Commit:   commitTips,
		Editable: tipsEditable,
		Patch:    patchTips,
	}
}

var tipsEditable = map[string]State{
	"amount": StateTipsAmount,
	"hours":  StateTipsHours,
}

// commitTips records the shift amount together with its envelope split so
// reports never recompute historical distributions.
func commitTips(d Draft, env Env) record.Fields {
	f := record.Fields{}
	putNumber(f, d, "amount")
	putNumber(f, d, "hours")
	if total, ok := d.Number("amount"); ok {
		f["distribution"] = finance.TipsDistribution(total)
	}
	f["date"] = env.Now.In(env.Location).Format(expenseDateLayout)
	return f
}

func patchTips(field string, v Value) (record.Patch, error) {
	p := record.TipsPatch{}
	switch field {
	case "amount":
		p.Amount = numPtr(v)
	case "hours":
		p.Hours = numPtr(v)
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
