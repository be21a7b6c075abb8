// Package forms defines the uniform result contract returned by every
// mutating operation: success plus a mapping from field name (or the
// sentinel "_form" key for form-level errors) to human-readable messages.
package forms

// FormField is the sentinel key for errors not attributable to one field.
const FormField = "_form"

type Result struct {
	Success bool                `json:"success"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func OK() Result {
	return Result{Success: true}
}

// FieldError builds a failed Result with a single field-scoped message.
func FieldError(field, msg string) Result {
	return Result{Success: false, Errors: map[string][]string{field: {msg}}}
}

// FormError builds a failed Result with a single form-level message.
func FormError(msg string) Result {
	return FieldError(FormField, msg)
}

// Errors accumulates per-field validation messages before storage access.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// Result converts the accumulated errors into a failed Result.
func (e Errors) Result() Result {
	return Result{Success: false, Errors: e}
}
