package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Done, Help                          lipgloss.Style

	Status   map[model.Status]lipgloss.Style
	Priority map[model.Priority]lipgloss.Style

	BoxUnchecked, BoxProgress, BoxChecked string
	SymOK, SymFail                        string
	Border                                lipgloss.Border
	BorderColor                           lipgloss.TerminalColor
}

var current = build("classic")

func SetTheme(name string) {
	current = build(name)
}

// Expose what renderers need
func Current() Theme { return current }

func build(name string) Theme {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:    "neon",
			Title:   fg("13").Bold(true),
			Muted:   fg("8"),
			Accent:  fg("14"),
			Success: fg("10"),
			Error:   fg("9").Bold(true),
			Pending: fg("11"),
			Status: map[model.Status]lipgloss.Style{
				model.StatusTodo:       fg("14"),
				model.StatusInProgress: fg("11"),
				model.StatusDone:       fg("10"),
			},
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow:    fg("8"),
				model.PriorityMedium: fg("13"),
				model.PriorityHigh:   fg("9").Bold(true),
			},
			Selected:     fg("13").Bold(true),
			Done:         lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:         lipgloss.NewStyle().Faint(true),
			BoxUnchecked: "◻", BoxProgress: "◫", BoxChecked: "◼",
			SymOK: "✔", SymFail: "✖",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Name:  "mono",
			Title: plain.Bold(true), Muted: plain, Accent: plain,
			Success: plain, Error: plain, Pending: plain,
			Status: map[model.Status]lipgloss.Style{
				model.StatusTodo: plain, model.StatusInProgress: plain, model.StatusDone: plain,
			},
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow: plain, model.PriorityMedium: plain, model.PriorityHigh: plain,
			},
			Selected:     plain.Reverse(true),
			Done:         plain,
			Help:         plain,
			BoxUnchecked: "[ ]", BoxProgress: "[~]", BoxChecked: "[x]",
			SymOK: "ok", SymFail: "error:",
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.NoColor{},
		}
	default: // classic
		return Theme{
			Name:    "classic",
			Title:   lipgloss.NewStyle().Bold(true),
			Muted:   lipgloss.NewStyle().Faint(true),
			Accent:  fg("12"),
			Success: fg("42"),
			Error:   fg("9").Bold(true),
			Pending: fg("214"),
			Status: map[model.Status]lipgloss.Style{
				model.StatusTodo:       fg("12"),
				model.StatusInProgress: fg("214"),
				model.StatusDone:       fg("42"),
			},
			Priority: map[model.Priority]lipgloss.Style{
				model.PriorityLow:    fg("8"),
				model.PriorityMedium: fg("214"),
				model.PriorityHigh:   fg("9"),
			},
			Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
			Done:         lipgloss.NewStyle().Faint(true).Strikethrough(true),
			Help:         lipgloss.NewStyle().Faint(true),
			BoxUnchecked: "☐", BoxProgress: "◐", BoxChecked: "☑",
			SymOK: "✔", SymFail: "✖",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("8"),
		}
	}
}

// Box is the checkbox symbol for a status.
func (t Theme) Box(s model.Status) string {
	switch s {
	case model.StatusDone:
		return t.BoxChecked
	case model.StatusInProgress:
		return t.BoxProgress
	default:
		return t.BoxUnchecked
	}
}
