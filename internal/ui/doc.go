// Package ui renders CLI output with [lipgloss] styles.
//
// A [Palette] holds the named styles and renders responses, progress updates, compiled plans,
// bulk summaries and transcoder checks. Colors drop out automatically when output is not a terminal.
package ui
