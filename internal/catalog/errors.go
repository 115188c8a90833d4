package catalog

import "errors"

// ValidationError reports a draft that cannot be committed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is match any ValidationError on the same field.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Field == e.Field
}

// ErrTitleRequired is returned by Add when the draft has no usable title.
var ErrTitleRequired = &ValidationError{Field: "title", Message: "title required"}
