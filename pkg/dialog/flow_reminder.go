package dialog

import (
	"strings"
	"time"

	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateReminderNote     State = "reminder_note"
	StateReminderDate     State = "reminder_date"
	StateReminderTime     State = "reminder_time"
	StateReminderRepeat   State = "reminder_repeat"
	StateReminderPriority State = "reminder_priority"
)

func reminderFlow() *Flow {
	return &Flow{
		Kind: record.KindReminder,
		Order: []Step{
			{
				State:    StateReminderNote,
				Prompt:   "What should I remind you about?",
				Field:    "note",
				Validate: nonEmpty,
			},
			{
				State:  StateReminderDate,
				Prompt: "On which day? DD.MM, DD.MM.YYYY, \"today\" or \"tomorrow\".",
				Field:  "date",
				Validate: func(in Input, _ Draft, env Env) (Value, error) {
					now := env.Now.In(env.Location)
					switch strings.ToLower(strings.TrimSpace(in.Text)) {
					case "today":
						return TimeValue(midnight(now)), nil
					case "tomorrow":
						return TimeValue(midnight(now.AddDate(0, 0, 1))), nil
					}
					t, err := ParseDate(in.Text, now)
					if err != nil {
						return Value{}, err
					}
					return TimeValue(t), nil
				},
			},
			{
				State:  StateReminderTime,
				Prompt: "At what time? HH:MM.",
				Field:  "time",
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					h, m, err := ParseClock(in.Text)
					if err != nil {
						return Value{}, err
					}
					return TextValue(clockText(h, m)), nil
				},
			},
			{
				State:    StateReminderRepeat,
				Prompt:   "Repeat? (none, daily, weekly)",
				Field:    "repeat",
				Validate: choice("none", "daily", "weekly"),
			},
			{
				State:    StateReminderPriority,
				Prompt:   "Priority 0-3? (or skip)",
				Field:    "priority",
				Optional: true,
				Validate: func(in Input, _ Draft, _ Env) (Value, error) {
					p, err := ParsePriority(in.Text)
					if err != nil {
						return Value{}, err
					}
					return NumberValue(float64(p)), nil
				},
			},
		},
		Commit:   commitReminder,
		Editable: reminderEditable,
		Patch:    patchReminder,
	}
}

var reminderEditable = map[string]State{
	"note":     StateReminderNote,
	"repeat":   StateReminderRepeat,
	"priority": StateReminderPriority,
}

func commitReminder(d Draft, env Env) record.Fields {
	f := record.Fields{}
	putText(f, d, "note")
	putText(f, d, "repeat")
	putWhole(f, d, "priority")

	date, dateOK := d.Value("date")
	clock := d.Text("time")
	if dateOK && date.Kind == ValueTime && clock != "" {
		h, m, err := ParseClock(clock)
		if err == nil {
			day := date.Time
			f["at"] = time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, env.Location)
		}
	}
	return f
}

func patchReminder(field string, v Value) (record.Patch, error) {
	p := record.ReminderPatch{}
	switch field {
	case "note":
		p.Note = strPtr(v)
	case "priority":
		p.Priority = intPtr(v)
	case "repeat":
		if v.Kind != ValueText {
			return nil, invalidf("repeat must be none, daily or weekly")
		}
		r := record.Repeat(v.Text)
		p.Repeat = &r
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clockText(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}
