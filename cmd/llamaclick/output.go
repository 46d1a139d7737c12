package main

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-llamaclick/internal/agents"
	"go-llamaclick/pkg/memory/buffer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			PaddingLeft(2)

	labelStyle = lipgloss.NewStyle().Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

func renderResult(res *agents.Result) string {
	var b strings.Builder
	label := "Result"
	if res.Recovered {
		label = "Result (recovered)"
	}
	b.WriteString(labelStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(res.Output))
	b.WriteString("\n")
	return b.String()
}

// renderHistories prints roles in pipeline order, skipping empty histories.
func renderHistories(h map[string][]buffer.Memory) string {
	roles := make([]string, 0, len(h))
	for role := range h {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roleOrder(roles[i]) < roleOrder(roles[j]) })

	var b strings.Builder
	for _, role := range roles {
		items := h[role]
		if len(items) == 0 {
			continue
		}
		b.WriteString(labelStyle.Render(role))
		b.WriteString("\n")
		for _, m := range items {
			b.WriteString(stepStyle.Render("Q: " + m.Question))
			b.WriteString("\n")
			b.WriteString(messageStyle.Render("A: " + m.Answer))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func roleOrder(role string) int {
	t, err := agents.ParseType(role)
	if err != nil {
		return len(agents.Types)
	}
	return int(t)
}
