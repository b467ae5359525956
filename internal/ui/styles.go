// Package ui renders gqld output for humans: styles, deployment progress,
// change lists and environment tables.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu palette, adaptive to light and dark terminals.
var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// Status is the outcome shown in front of a line of output.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
	StatusSkip
	StatusInfo
)

var statusGlyphs = [...]string{
	StatusPass: "✓",
	StatusWarn: "⚠",
	StatusFail: "✗",
	StatusSkip: "-",
	StatusInfo: "ℹ",
}

// Glyph returns the unstyled icon.
func (s Status) Glyph() string {
	if s < 0 || int(s) >= len(statusGlyphs) {
		return "?"
	}
	return statusGlyphs[s]
}

// Icon returns the icon in the status color.
func (s Status) Icon() string {
	switch s {
	case StatusPass:
		return PassStyle.Render(s.Glyph())
	case StatusWarn:
		return WarnStyle.Render(s.Glyph())
	case StatusFail:
		return FailStyle.Render(s.Glyph())
	case StatusInfo:
		return AccentStyle.Render(s.Glyph())
	}
	return MutedStyle.Render(s.Glyph())
}

// Indentation for nested output
const (
	TreeIndentation = "  "
	DetailIndent    = "  └─ "
)

func RenderFail(s string) string {
	return FailStyle.Render(s)
}

func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderCategory renders a section header in uppercase.
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}
