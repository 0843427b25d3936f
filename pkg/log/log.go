// Package log prints styled per-task progress to the terminal.
package log

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	importantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Important prints a highlighted progress message.
func Important(format string, a ...interface{}) {
	fmt.Println(importantStyle.Render(fmt.Sprintf(format, a...)))
}

// Info prints an unstyled message.
func Info(format string, a ...interface{}) {
	fmt.Printf(format+"\n", a...)
}

// Success prints a green confirmation.
func Success(format string, a ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, a...)))
}

// Warn prints a yellow warning to stderr.
func Warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(format, a...)))
}

// Error prints a red error to stderr.
func Error(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf(format, a...)))
}
