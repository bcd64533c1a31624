package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/proxycfg/internal/document"
)

// ChangeFunc receives the raw value of a field after every edit: a string
// for text fields, a bool for checkboxes. It runs inside Update, before the
// next message is processed.
type ChangeFunc func(raw any)

// ValueField edits a single document value. Text-like fields wrap a
// textinput; boolean fields render as a checkbox toggled with space or
// enter. Every edit is reported through the ChangeFunc; the field never
// interprets the value itself.
type ValueField struct {
	field    document.Field
	input    textinput.Model
	checked  bool
	focused  bool
	onChange ChangeFunc
}

// NewValueField creates a field showing value, which must be the Go value
// held by the document (string, int, float64 or bool).
func NewValueField(field document.Field, value any, onChange ChangeFunc) ValueField {
	f := ValueField{field: field, onChange: onChange}

	if !field.Type.IsText() {
		f.checked, _ = value.(bool)
		return f
	}

	input := textinput.New()
	input.Prompt = ""
	input.Width = FieldInputWidth
	input.CharLimit = 256
	input.Placeholder = field.Type.String()
	if field.Type == document.TypePassword {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	input.SetValue(formatValue(value))
	f.input = input
	return f
}

// formatValue renders a document value as the text shown in an input.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Field returns the schema field being edited.
func (f ValueField) Field() document.Field {
	return f.field
}

// Value returns the current raw value.
func (f ValueField) Value() any {
	if !f.field.Type.IsText() {
		return f.checked
	}
	return f.input.Value()
}

// Focused reports whether the field has keyboard focus.
func (f ValueField) Focused() bool {
	return f.focused
}

// Focus gives the field keyboard focus.
func (f *ValueField) Focus() tea.Cmd {
	f.focused = true
	if f.field.Type.IsText() {
		return f.input.Focus()
	}
	return nil
}

// Blur removes keyboard focus.
func (f *ValueField) Blur() {
	f.focused = false
	if f.field.Type.IsText() {
		f.input.Blur()
	}
}

// Update handles key input while the field is focused.
func (f ValueField) Update(msg tea.Msg) (ValueField, tea.Cmd) {
	if !f.focused {
		return f, nil
	}

	if !f.field.Type.IsText() {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch k.String() {
			case " ", "enter":
				f.checked = !f.checked
				f.changed(f.checked)
				return f, nil
			}
		}
		return f, nil
	}

	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if after := f.input.Value(); after != before {
		f.changed(after)
	}
	return f, cmd
}

func (f ValueField) changed(raw any) {
	if f.onChange != nil {
		f.onChange(raw)
	}
}

// View renders the label and the input on one line.
func (f ValueField) View() string {
	marker := "  "
	label := LabelStyle.Render(f.field.Label)
	if f.focused {
		marker = focusMarker
		label = FocusedLabelStyle.Render(f.field.Label)
	}

	var value string
	if f.field.Type.IsText() {
		value = f.input.View()
	} else {
		box := "[ ]"
		if f.checked {
			box = "[x]"
		}
		value = box
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, marker, label, value)
}
