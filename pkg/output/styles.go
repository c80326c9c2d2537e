package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yahsan2/backlog-import/pkg/backlog"
)

var (
	ColorPass = lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"}
	ColorWarn = lipgloss.AdaptiveColor{Light: "#f2ae49", Dark: "#ffb454"}
	ColorFail = lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"}
	// muted gray for secondary details
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#399ee6", Dark: "#59c2ff"}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// RenderPass renders text with pass styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderCategory renders a section header in uppercase
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// Reporter prints import progress and warnings, usually to stderr
type Reporter struct {
	w     io.Writer
	quiet bool
}

// NewReporter creates a reporter writing to w. A quiet reporter only prints warnings.
func NewReporter(w io.Writer, quiet bool) *Reporter {
	return &Reporter{w: w, quiet: quiet}
}

// Warn prints a row warning
func (r *Reporter) Warn(row int, message string) {
	fmt.Fprintf(r.w, "%s row %d: %s\n", RenderWarn(IconWarn), row, message)
}

// Created prints a created issue
func (r *Reporter) Created(row int, issue *backlog.Issue, parentKey string) {
	if r.quiet {
		return
	}
	line := fmt.Sprintf("%s row %d: %s %s", RenderPass(IconPass), row, issue.IssueKey, issue.Summary)
	if parentKey != "" {
		line += " " + RenderMuted("(child of "+parentKey+")")
	}
	fmt.Fprintln(r.w, line)
}

// Warnf prints a warning not tied to a row
func (r *Reporter) Warnf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "%s %s\n", RenderWarn(IconWarn), fmt.Sprintf(format, args...))
}

// Info prints an informational line
func (r *Reporter) Info(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", IconInfo, fmt.Sprintf(format, args...))
}

// Success prints a success line
func (r *Reporter) Success(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "%s %s\n", RenderPass(IconPass), fmt.Sprintf(format, args...))
}

// Fail prints a failure line
func (r *Reporter) Fail(format string, args ...interface{}) {
	fmt.Fprintf(r.w, "%s %s\n", RenderFail(IconFail), fmt.Sprintf(format, args...))
}
