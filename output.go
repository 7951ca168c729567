package main

import (
	"fmt"

	"github.com/fatih/color"
)

// Color definitions
var (
	// Success messages (green)
	colorSuccess = color.New(color.FgGreen).SprintFunc()

	// Error messages (red)
	colorError = color.New(color.FgRed).SprintFunc()

	// Info messages (cyan)
	colorInfo = color.New(color.FgCyan).SprintFunc()
)

// Output prefixes
const (
	prefixSaved = "✓"
	prefixError = "✗"
	prefixInfo  = "ℹ"
)

// logSuccess prints a success message
func logSuccess(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("%s %s\n", colorSuccess(prefixSaved), msg)
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("%s %s\n", colorError(prefixError), msg)
}

// logInfo prints an informational message
func logInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Printf("%s %s\n", colorInfo(prefixInfo), msg)
}
