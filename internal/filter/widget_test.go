package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields() []Field {
	return []Field{
		{Name: "radius", Label: "Radius", Kind: FieldSlider, Min: 1, Max: 10, Step: 1, Default: 2.0},
		{Name: "mode", Label: "Mode", Kind: FieldCombo, Options: []Option{{"a", "A"}, {"b", "B"}}, Default: "a"},
		{Name: "flag", Label: "Flag", Kind: FieldCheck, Default: false},
	}
}

func TestFormWidget_Defaults(t *testing.T) {
	w := NewFormWidget("test", 1, testFields())

	cfg := w.Configuration()
	assert.Equal(t, "test", cfg.Name())
	assert.Equal(t, 2.0, cfg.GetFloat("radius", 0))
	assert.Equal(t, "a", cfg.GetString("mode", ""))
	assert.False(t, cfg.GetBool("flag", true))

	for _, f := range w.Fields() {
		assert.Equal(t, f.Default, f.Value, f.Name)
	}
}

func TestFormWidget_SetValue(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		want    any
		wantErr bool
	}{
		{"slider int", "radius", 5, 5.0, false},
		{"slider string", "radius", "7", 7.0, false},
		{"slider out of range", "radius", 11, nil, true},
		{"slider not a number", "radius", "big", nil, true},
		{"combo valid", "mode", "b", "b", false},
		{"combo invalid", "mode", "c", nil, true},
		{"check bool", "flag", true, true, false},
		{"check number", "flag", 1, true, false},
		{"check string", "flag", "yes", nil, true},
		{"unknown field", "nope", 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewFormWidget("test", 1, testFields())
			err := w.SetValue(tt.field, tt.value)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidConfiguration), "got %v", err)
				return
			}
			require.NoError(t, err)
			v, ok := w.Value(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestFormWidget_OnChange(t *testing.T) {
	w := NewFormWidget("test", 1, testFields())
	var changed []string
	w.OnChange = func(w *FormWidget, name string) {
		changed = append(changed, name)
		if name == "flag" {
			_ = w.Set("mode", "b")
		}
	}

	require.NoError(t, w.SetValue("flag", true))

	assert.Equal(t, []string{"flag"}, changed)
	v, _ := w.Value("mode")
	assert.Equal(t, "b", v)
}

func TestFormWidget_SetConfiguration(t *testing.T) {
	w := NewFormWidget("test", 1, testFields())
	require.NoError(t, w.SetValue("mode", "b"))

	cfg := NewConfiguration("test", 1)
	cfg.SetProperty("radius", 4)
	cfg.SetProperty("unrelated", "x")

	require.NoError(t, w.SetConfiguration(cfg))

	out := w.Configuration()
	assert.Equal(t, 4.0, out.GetFloat("radius", 0))
	assert.Equal(t, "a", out.GetString("mode", ""), "missing properties reset to default")
	assert.False(t, out.HasProperty("unrelated"))

	bad := NewConfiguration("test", 1)
	bad.SetProperty("radius", 99)
	assert.Error(t, w.SetConfiguration(bad))
}

func TestFormWidget_HiddenFieldsLeftOut(t *testing.T) {
	w := NewFormWidget("test", 1, testFields())
	w.SetHidden("flag", true)

	assert.False(t, w.Configuration().HasProperty("flag"))

	var hidden bool
	for _, f := range w.Fields() {
		if f.Name == "flag" {
			hidden = f.Hidden
		}
	}
	assert.True(t, hidden)
}
