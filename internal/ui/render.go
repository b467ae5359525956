package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/gqld/internal/types"
)

type changeMark struct {
	mark  string
	style lipgloss.Style
}

var changeMarks = map[types.ChangeType]changeMark{
	types.ChangeAdd:    {"+", PassStyle},
	types.ChangeUpdate: {"~", WarnStyle},
	types.ChangeRemove: {"-", FailStyle},
}

// RenderChange renders one change with its type marker.
func RenderChange(c types.ChangeRecord) string {
	m, ok := changeMarks[c.Type]
	if !ok {
		return c.Description
	}
	return m.style.Render(m.mark + " " + c.Description)
}

// RenderChanges renders a change list, one change per line.
func RenderChanges(changes []types.ChangeRecord) string {
	var b strings.Builder
	for _, c := range changes {
		b.WriteString(TreeIndentation)
		b.WriteString(RenderChange(c))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderProblems renders validation problems under a header.
func RenderProblems(problems types.ValidationErrors) string {
	var b strings.Builder
	b.WriteString(RenderCategory("Project problems"))
	b.WriteString("\n")
	for _, p := range problems {
		fmt.Fprintf(&b, "%s%s %s\n", TreeIndentation, StatusFail.Icon(), p.Error())
	}
	return b.String()
}

// RenderEnvironment renders the connection details of one environment.
func RenderEnvironment(r types.EnvironmentRecord) string {
	rows := [][2]string{
		{"Environment", r.Env},
		{"Project", fmt.Sprintf("%s (%s)", r.Name, r.Alias)},
		{"Endpoint", r.Endpoint},
		{"Version", r.Version},
	}
	if r.ConsoleURL != "" {
		rows = append(rows, [2]string{"Console", r.ConsoleURL})
	}
	if r.PlaygroundURL != "" {
		rows = append(rows, [2]string{"Playground", r.PlaygroundURL})
	}
	label := lipgloss.NewStyle().Width(12).Foreground(ColorMuted)
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(label.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEnvironments renders a table of environments.
func RenderEnvironments(recs []types.EnvironmentRecord) string {
	if len(recs) == 0 {
		return RenderMuted("No environments yet. Run gqld deploy to create one.") + "\n"
	}
	headers := []string{"ENV", "ALIAS", "VERSION", "ENDPOINT"}
	cells := make([][]string, 0, len(recs))
	for _, r := range recs {
		cells = append(cells, []string{r.Env, r.Alias, r.Version, r.Endpoint})
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
		for _, row := range cells {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	line := func(row []string, style lipgloss.Style) {
		parts := make([]string, len(row))
		for i, c := range row {
			parts[i] = style.Width(widths[i]).Render(c)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteString("\n")
	}
	line(headers, CategoryStyle)
	for _, row := range cells {
		line(row, lipgloss.NewStyle())
	}
	return b.String()
}
