package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/Makepad-fr/tasktracker/internal/tasks"
)

// Stdout and Stderr are swapped out in tests.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func OK(msg string) {
	t := Current()
	fmt.Fprintln(Stdout, t.Success.Render(t.SymOK+" "+msg))
}

func Fail(msg string) {
	t := Current()
	fmt.Fprintln(Stderr, t.Error.Render(t.SymFail+" "+msg))
}

func Muted(msg string) string { return Current().Muted.Render(msg) }

// Printer shows task notifications on the terminal.
type Printer struct{}

func (Printer) Notify(n tasks.Notification) {
	msg := n.Title
	if n.Description != "" {
		msg += ": " + n.Description
	}
	if n.Variant == tasks.VariantDestructive {
		Fail(msg)
		return
	}
	OK(msg)
}
