// Package dialog implements the guided-dialog engine: per-user wizard
// sessions, transient drafts, step validation with draft-dependent
// branching, and commit/cancel handling. The chat transport is an external
// collaborator; it turns raw messages into typed Inputs and renders the
// prompts this package returns.
package dialog

// Control is a reserved input recognised ahead of normal field validation.
// Sentinel texts ("cancel" buttons and the like) are translated into
// Controls at the transport boundary; the engine never matches on raw
// strings.
type Control string

const (
	ControlNone   Control = ""
	ControlCancel Control = "cancel"
	ControlSkip   Control = "skip"
)

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Input is one user message addressed to an active wizard.
type Input struct {
	Control Control
	Text    string
	// Coords is set when the transport delivered a native location instead
	// of text.
	Coords *Coordinates
}

func TextInput(text string) Input {
	return Input{Text: text}
}

func CancelInput() Input {
	return Input{Control: ControlCancel}
}

func SkipInput() Input {
	return Input{Control: ControlSkip}
}

func LocationInput(lat, lon float64) Input {
	return Input{Coords: &Coordinates{Latitude: lat, Longitude: lon}}
}
