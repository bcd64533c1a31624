// Package tui implements the interactive terminal editor using Bubble Tea.
//
// The AppModel routes between four screens: login, registration, the
// configuration editor and the live log view. The editor and log screens
// require a stored token; without one the app shows the login screen.
//
// The editor is driven by document.Schema. Each section is rendered by a
// SectionEditor holding one ValueField per schema field, and every edit is
// reported as an EditMsg that the editor applies to its document.Controller.
package tui
