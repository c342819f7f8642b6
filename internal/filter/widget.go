package filter

import (
	"fmt"
	"math"
)

// FieldKind tells a front end which control to render for a Field.
type FieldKind string

const (
	FieldSlider FieldKind = "slider"
	FieldSpin   FieldKind = "spin"
	FieldCombo  FieldKind = "combo"
	FieldCheck  FieldKind = "check"
)

// Option is one entry of a combo field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes a single setting of a configuration form.
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Min     float64   `json:"min,omitempty"`
	Max     float64   `json:"max,omitempty"`
	Step    float64   `json:"step,omitempty"`
	Suffix  string    `json:"suffix,omitempty"`
	Options []Option  `json:"options,omitempty"`
	Default any       `json:"default"`
	Value   any       `json:"value"`
	Hidden  bool      `json:"hidden,omitempty"`
}

// ConfigWidget is the settings form of a filter.
//
// The host renders Fields however it likes, pushes user input through
// SetValue and reads the result back with Configuration. SetConfiguration
// loads a stored configuration, for example a preset.
type ConfigWidget interface {
	Fields() []Field
	SetConfiguration(cfg *Configuration) error
	Configuration() *Configuration
	SetValue(name string, value any) error
}

// FormWidget is a ConfigWidget backed by a list of fields. Filters build one
// in CreateConfigurationWidget and may attach an OnChange hook to keep
// dependent fields in sync.
type FormWidget struct {
	configName    string
	configVersion int
	fields        []Field

	// OnChange runs after a value is stored, with the field name that
	// changed. It may call Set to update other fields.
	OnChange func(w *FormWidget, name string)
}

// NewFormWidget creates a form whose values start at the field defaults.
func NewFormWidget(configName string, configVersion int, fields []Field) *FormWidget {
	w := &FormWidget{
		configName:    configName,
		configVersion: configVersion,
		fields:        make([]Field, len(fields)),
	}
	copy(w.fields, fields)
	for i := range w.fields {
		w.fields[i].Value = w.fields[i].Default
	}
	return w
}

// Fields returns a copy of the form fields with their current values.
func (w *FormWidget) Fields() []Field {
	out := make([]Field, len(w.fields))
	copy(out, w.fields)
	return out
}

// Value returns the current value of a field.
func (w *FormWidget) Value(name string) (any, bool) {
	if f := w.field(name); f != nil {
		return f.Value, true
	}
	return nil, false
}

// SetValue validates and stores a value, then runs OnChange.
func (w *FormWidget) SetValue(name string, value any) error {
	if err := w.Set(name, value); err != nil {
		return err
	}
	if w.OnChange != nil {
		w.OnChange(w, name)
	}
	return nil
}

// Set validates and stores a value without running OnChange.
func (w *FormWidget) Set(name string, value any) error {
	f := w.field(name)
	if f == nil {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidConfiguration, name)
	}
	v, err := coerce(f, value)
	if err != nil {
		return err
	}
	f.Value = v
	return nil
}

// SetHidden shows or hides a field.
func (w *FormWidget) SetHidden(name string, hidden bool) {
	if f := w.field(name); f != nil {
		f.Hidden = hidden
	}
}

// SetConfiguration loads every known property of cfg. Properties without a
// matching field are ignored; fields missing from cfg are reset to their
// defaults.
func (w *FormWidget) SetConfiguration(cfg *Configuration) error {
	for i := range w.fields {
		f := &w.fields[i]
		raw, ok := cfg.GetProperty(f.Name)
		if !ok {
			f.Value = f.Default
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return err
		}
		f.Value = v
	}
	return nil
}

// Configuration builds a configuration from the current values. Hidden
// fields are left out so the filter applies its own default for them.
func (w *FormWidget) Configuration() *Configuration {
	cfg := NewConfiguration(w.configName, w.configVersion)
	for _, f := range w.fields {
		if f.Hidden {
			continue
		}
		cfg.SetProperty(f.Name, f.Value)
	}
	return cfg
}

func (w *FormWidget) field(name string) *Field {
	for i := range w.fields {
		if w.fields[i].Name == name {
			return &w.fields[i]
		}
	}
	return nil
}

// coerce converts value to the type a field stores and checks its range.
func coerce(f *Field, value any) (any, error) {
	scratch := NewConfiguration("", 0)
	scratch.SetProperty(f.Name, value)

	switch f.Kind {
	case FieldCheck:
		if _, ok := value.(bool); !ok {
			if _, isNum := toFloat(value); !isNum {
				return nil, fmt.Errorf("%w: field %q expects a boolean, got %T", ErrInvalidConfiguration, f.Name, value)
			}
		}
		return scratch.GetBool(f.Name, false), nil

	case FieldCombo:
		s := scratch.GetString(f.Name, "")
		for _, o := range f.Options {
			if o.Value == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: field %q does not accept %q", ErrInvalidConfiguration, f.Name, s)

	case FieldSlider, FieldSpin:
		v, ok := toFloat(value)
		if !ok || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: field %q expects a number, got %v", ErrInvalidConfiguration, f.Name, value)
		}
		if f.Min != f.Max && (v < f.Min || v > f.Max) {
			return nil, fmt.Errorf("%w: field %q value %g outside [%g, %g]", ErrInvalidConfiguration, f.Name, v, f.Min, f.Max)
		}
		return v, nil
	}

	return value, nil
}
