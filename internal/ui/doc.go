// Package ui implements the terminal UI for the rodbus monitor.
//
// The monitor is a Bubble Tea program that polls one span of a device's
// data tables through a modbus.Session and renders the current values as a
// styled table, refreshing on a fixed interval. Polling failures are shown
// in an error banner and retried on the next tick rather than ending the
// program, so a flapping connection reads as a flapping banner.
//
// Styling uses lipgloss with a shared palette; terminal dimensions come
// from golang.org/x/term with sane fallbacks for non-terminal output.
package ui
