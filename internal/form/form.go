// Package form models the input form built from a script's parameter
// declarations: one field per parameter, typed initial values and the
// dependency rule that enables or disables fields.
package form

import (
	"errors"
	"fmt"
	"time"

	"github.com/temirov/psrun/internal/params"
)

// Control is the kind of input a field is edited with.
type Control string

const (
	ControlCheckbox   Control = "checkbox"
	ControlDatePicker Control = "date"
	ControlNumeric    Control = "numeric"
	ControlText       Control = "text"
)

const (
	// NumericMinimum and NumericMaximum bound the values entered into
	// numeric controls. Declared defaults are passed through as written.
	NumericMinimum = 0
	NumericMaximum = 1000000
	// DecimalPlaces is the precision of the zero value of decimal controls.
	DecimalPlaces = 2

	errorUnknownFieldFormat = "%w: %s"
	errorInvalidValueFormat = "%w: %q is not a valid %s for %s"
	errorOutOfRangeFormat   = "%w: %q for %s is outside %d..%d"
)

var (
	// ErrUnknownField reports a value for a parameter the script does not declare.
	ErrUnknownField = errors.New("unknown parameter")
	// ErrInvalidValue reports user input that cannot be converted to the field type.
	ErrInvalidValue = errors.New("invalid parameter value")
)

// Field is one editable parameter.
type Field struct {
	Declaration params.Declaration
	Control     Control
	Value       any
}

// Form holds fields in declaration order together with their dependencies.
type Form struct {
	fields       []*Field
	byName       map[string]*Field
	dependencies params.Dependencies
	now          func() time.Time
}

// Option customises a form.
type Option func(*Form)

// WithClock sets the clock used for date fields without a default.
func WithClock(now func() time.Time) Option {
	return func(form *Form) {
		form.now = now
	}
}

// New builds a form. When a name is declared twice the later declaration
// wins and the field keeps the position of the first.
func New(declarations []params.Declaration, dependencies params.Dependencies, options ...Option) *Form {
	form := &Form{
		byName:       make(map[string]*Field, len(declarations)),
		dependencies: params.Dependencies{},
		now:          time.Now,
	}
	for _, option := range options {
		option(form)
	}
	for name, dependsOn := range dependencies {
		form.dependencies[name] = dependsOn
	}
	for _, declaration := range declarations {
		field := &Field{
			Declaration: declaration,
			Control:     controlFor(declaration.Type),
		}
		field.Value = form.initialValue(declaration)
		if existing, found := form.byName[declaration.Name]; found {
			*existing = *field
			continue
		}
		form.byName[declaration.Name] = field
		form.fields = append(form.fields, field)
	}
	return form
}

// Fields returns copies of the fields in form order.
func (form *Form) Fields() []Field {
	fields := make([]Field, 0, len(form.fields))
	for _, field := range form.fields {
		fields = append(fields, *field)
	}
	return fields
}

// Field returns the field with the given name.
func (form *Form) Field(name string) (Field, bool) {
	field, found := form.byName[name]
	if !found {
		return Field{}, false
	}
	return *field, true
}

// Set converts raw user input into the field's type and stores it. Values
// for numeric controls must lie within NumericMinimum and NumericMaximum.
func (form *Form) Set(name string, raw string) error {
	field, found := form.byName[name]
	if !found {
		return fmt.Errorf(errorUnknownFieldFormat, ErrUnknownField, name)
	}
	valueType := field.Declaration.Type
	value, ok := params.Coerce(raw, valueType)
	if !ok {
		if valueType == params.TypeString {
			field.Value = ""
			return nil
		}
		return fmt.Errorf(errorInvalidValueFormat, ErrInvalidValue, raw, valueType, name)
	}
	if !inRange(field.Control, value) {
		return fmt.Errorf(errorOutOfRangeFormat, ErrInvalidValue, raw, name, NumericMinimum, NumericMaximum)
	}
	field.Value = value
	return nil
}

// Enabled reports whether a field accepts input. A field that depends on
// another is enabled only while the other field is enabled and holds a
// truthy value. References to undeclared fields leave the field enabled.
func (form *Form) Enabled(name string) bool {
	return form.enabled(name, map[string]bool{})
}

func (form *Form) enabled(name string, visiting map[string]bool) bool {
	dependsOn, hasDependency := form.dependencies[name]
	if !hasDependency || visiting[name] {
		return true
	}
	target, found := form.byName[dependsOn]
	if !found {
		return true
	}
	visiting[name] = true
	defer delete(visiting, name)
	return form.enabled(dependsOn, visiting) && truthy(target.Value)
}

// Dangling returns the dependencies whose target is not declared.
func (form *Form) Dangling() params.Dependencies {
	dangling := params.Dependencies{}
	for name, dependsOn := range form.dependencies {
		if _, found := form.byName[dependsOn]; !found {
			dangling[name] = dependsOn
		}
	}
	return dangling
}

// Arguments collects the values of enabled fields in form order.
func (form *Form) Arguments() params.Arguments {
	var arguments params.Arguments
	for _, field := range form.fields {
		if !form.Enabled(field.Declaration.Name) {
			continue
		}
		arguments.Set(field.Declaration.Name, field.Value)
	}
	return arguments
}

func controlFor(valueType params.Type) Control {
	switch {
	case valueType == params.TypeBool:
		return ControlCheckbox
	case valueType == params.TypeDateTime:
		return ControlDatePicker
	case valueType == params.TypeInt, valueType == params.TypeDecimal:
		return ControlNumeric
	default:
		return ControlText
	}
}

func (form *Form) initialValue(declaration params.Declaration) any {
	if declaration.HasDefault() {
		return declaration.Default
	}
	switch declaration.Type {
	case params.TypeBool:
		return false
	case params.TypeDateTime:
		return form.now()
	case params.TypeInt:
		return int32(0)
	case params.TypeLong:
		return int64(0)
	case params.TypeByte:
		return uint8(0)
	case params.TypeDouble:
		return float64(0)
	case params.TypeFloat:
		return float32(0)
	case params.TypeDecimal:
		return params.DecimalFromFloat(0, DecimalPlaces)
	default:
		return ""
	}
}

// inRange reports whether a value fits a numeric control.
func inRange(control Control, value any) bool {
	if control != ControlNumeric {
		return true
	}
	var number float64
	switch typed := value.(type) {
	case int32:
		number = float64(typed)
	case params.Decimal:
		number = typed.Float64()
	default:
		return true
	}
	return number >= NumericMinimum && number <= NumericMaximum
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case time.Time:
		return !typed.IsZero()
	case params.Decimal:
		return !typed.IsZero()
	case params.Char:
		return typed != 0
	case int32:
		return typed != 0
	case int64:
		return typed != 0
	case uint8:
		return typed != 0
	case float64:
		return typed != 0
	case float32:
		return typed != 0
	default:
		return true
	}
}
