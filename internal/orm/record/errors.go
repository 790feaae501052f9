package record

import "errors"

// ErrUnknownAttribute is returned when writing a field the resource does not declare
var ErrUnknownAttribute = errors.New("unknown attribute")
