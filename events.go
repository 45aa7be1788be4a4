package main

// TUI message types. Session callbacks run off the Bubble Tea goroutine and
// deliver these through Program.Send.
type RefreshMsg struct{}
type NoticeMsg struct{ Text string }
