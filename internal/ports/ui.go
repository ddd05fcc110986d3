// Where: internal/ports/ui.go
// What: User interface abstraction for commands.
// Why: Provide a single output surface so commands stay UI-agnostic.
package ports

import (
	"fmt"
	"io"

	"github.com/poruru/edge-manifest/internal/ui"
)

// KeyValue is a key/value pair rendered inside a block.
type KeyValue struct {
	Key   string
	Value any
}

// UserInterface exposes high-level output helpers used by commands.
type UserInterface interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Block(emoji, title string, rows []KeyValue)
}

// NewConsoleUI returns a UserInterface backed by the console helper.
func NewConsoleUI(out io.Writer) UserInterface {
	return consoleUI{console: ui.New(out)}
}

// NewPlainUI returns a UserInterface that prints messages without prefixes.
// Blocks keep the console layout.
func NewPlainUI(out io.Writer) UserInterface {
	return plainUI{
		out:     out,
		console: ui.New(out),
	}
}

type consoleUI struct {
	console *ui.Console
}

func (c consoleUI) Info(msg string) {
	c.console.Info(msg)
}

func (c consoleUI) Warn(msg string) {
	c.console.Warn(msg)
}

func (c consoleUI) Success(msg string) {
	c.console.Success(msg)
}

func (c consoleUI) Block(emoji, title string, rows []KeyValue) {
	writeBlock(c.console, emoji, title, rows)
}

type plainUI struct {
	out     io.Writer
	console *ui.Console
}

func (p plainUI) Info(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Warn(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Success(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p plainUI) Block(emoji, title string, rows []KeyValue) {
	writeBlock(p.console, emoji, title, rows)
}

func writeBlock(console *ui.Console, emoji, title string, rows []KeyValue) {
	console.BlockStart(emoji, title)
	for _, kv := range rows {
		console.Item(kv.Key, kv.Value)
	}
	console.BlockEnd()
}
