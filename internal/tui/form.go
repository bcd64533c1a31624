package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// formInput is one labelled input of an account form.
type formInput struct {
	label string
	input textinput.Model
	err   string
}

// accountForm is the small vertical form shared by the login and
// registration screens. The last focus position is the submit button.
type accountForm struct {
	inputs []formInput
	focus  int
	submit string
}

func newAccountForm(submit string, labels ...string) accountForm {
	f := accountForm{submit: submit}
	for _, label := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.Width = FieldInputWidth
		in.CharLimit = 256
		if label == "Password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, formInput{label: label, input: in})
	}
	return f
}

// value returns the text of the input with the given label.
func (f accountForm) value(label string) string {
	for _, in := range f.inputs {
		if in.label == label {
			return in.input.Value()
		}
	}
	return ""
}

func (f *accountForm) setValue(label, value string) {
	for i := range f.inputs {
		if f.inputs[i].label == label {
			f.inputs[i].input.SetValue(value)
		}
	}
}

func (f *accountForm) setError(label, msg string) {
	for i := range f.inputs {
		if f.inputs[i].label == label {
			f.inputs[i].err = msg
		}
	}
}

func (f *accountForm) clearErrors() {
	for i := range f.inputs {
		f.inputs[i].err = ""
	}
}

// onSubmit reports whether the submit button has focus.
func (f accountForm) onSubmit() bool {
	return f.focus == len(f.inputs)
}

// onLastInput reports whether the last input has focus.
func (f accountForm) onLastInput() bool {
	return f.focus == len(f.inputs)-1
}

// setFocus moves focus to position i, wrapping around.
func (f *accountForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs) + 1
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].input.Focus()
		} else {
			f.inputs[j].input.Blur()
		}
	}
	return cmd
}

// update sends msg to the focused input.
func (f accountForm) update(msg tea.Msg) (accountForm, tea.Cmd) {
	if f.onSubmit() {
		return f, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus].input, cmd = f.inputs[f.focus].input.Update(msg)
	return f, cmd
}

func (f accountForm) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		marker, label := "  ", LabelStyle.Render(in.label)
		if i == f.focus {
			marker, label = focusMarker, FocusedLabelStyle.Render(in.label)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, marker, label, in.input.View()))
		b.WriteString("\n")
		if in.err != "" {
			b.WriteString(FieldErrorStyle.Render(in.err))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(renderButton(f.submit, f.onSubmit()))
	return b.String()
}
