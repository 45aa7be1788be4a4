// Package hotkey delivers the global Ctrl+Shift+Space toggle. Each chord
// press emits one event; holding the chord does not repeat.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	// Toggled fires once per chord press.
	Toggled() <-chan struct{}
}
