package dialog

import (
	"github.com/chatassist/dialog-manager/pkg/record"
)

const (
	StateNoteTitle State = "note_title"
	StateNoteBody  State = "note_body"
)

func noteFlow() *Flow {
	return &Flow{
		Kind: record.KindNote,
		Order: []Step{
			{
				State:    StateNoteTitle,
				Prompt:   "Note title?",
				Field:    "title",
				Validate: titled,
			},
			{
				State:    StateNoteBody,
				Prompt:   "The note itself?",
				Field:    "body",
				Validate: nonEmpty,
			},
		},
		Commit: func(d Draft, _ Env) record.Fields {
			f := record.Fields{}
			putText(f, d, "title")
			putText(f, d, "body")
			return f
		},
		Editable: noteEditable,
		Patch:    patchNote,
	}
}

var noteEditable = map[string]State{
	"title": StateNoteTitle,
	"body":  StateNoteBody,
}

func patchNote(field string, v Value) (record.Patch, error) {
	p := record.NotePatch{}
	switch field {
	case "title":
		p.Title = strPtr(v)
	case "body":
		p.Body = strPtr(v)
	default:
		return nil, unknownEditField(field)
	}
	return p, nil
}
