package serviceerr

import "errors"

var ErrConflict = errors.New("already exists")
var ErrNotFound = errors.New("not found")
var ErrNoActiveWizard = errors.New("no active wizard")
var ErrUnknownWizard = errors.New("unknown wizard kind")
