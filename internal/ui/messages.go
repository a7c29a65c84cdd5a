package ui

// InterruptMsg is sent into the terminal program when the process receives
// an interrupt signal from outside the keyboard.
type InterruptMsg struct{}
