package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/th3gh0s8/aura/pkg/integrations/faur"
	"github.com/th3gh0s8/aura/pkg/resolve"
)

// progressEvent is one resolver log line mirrored to the live display.
type progressEvent struct {
	line string
}

// resolveDoneMsg carries the resolution result into the model.
type resolveDoneMsg struct {
	res *resolve.Resolution
	err error
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressModel is the bubbletea model for the live resolution display: a
// spinner, the count of packages considered so far, and the most recent
// resolver activity line.
type progressModel struct {
	frame    int
	consider int
	last     string
	done     bool
	result   resolveDoneMsg
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressEvent:
		m.frame++
		m.last = msg.line
		if strings.HasPrefix(msg.line, "considering ") {
			m.consider++
		}
	case resolveDoneMsg:
		m.done = true
		m.result = msg
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.result = resolveDoneMsg{err: context.Canceled}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	return fmt.Sprintf("%s %s %s\n",
		styleSpinner.Render(frame),
		StyleValue.Render(fmt.Sprintf("%d packages considered", m.consider)),
		StyleDim.Render(m.last))
}

// runProgressTUI runs the resolution under a live progress display. The
// resolver runs in its own goroutine; its logger events stream through the
// channel into the model, and the final result is delivered as a message.
func runProgressTUI(ctx context.Context, resolver *resolve.Resolver, names []string, events chan progressEvent) (*resolve.Resolution, error) {
	prog := tea.NewProgram(progressModel{}, tea.WithContext(ctx))

	go func() {
		for ev := range events {
			prog.Send(ev)
		}
	}()
	go func() {
		res, err := resolver.Resolve(ctx, names)
		close(events)
		prog.Send(resolveDoneMsg{res: res, err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	m := final.(progressModel)
	return m.result.res, m.result.err
}

// packageListModel is the bubbletea model for interactive package
// selection from AUR search results. Space toggles, enter confirms.
type packageListModel struct {
	packages []faur.Package
	cursor   int
	selected map[int]bool
	accepted bool
	height   int
	offset   int
}

func newPackageListModel(packages []faur.Package) packageListModel {
	return packageListModel{
		packages: packages,
		selected: make(map[int]bool),
		height:   15,
	}
}

func (m packageListModel) Init() tea.Cmd {
	return nil
}

func (m packageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.packages)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "enter":
			if len(m.chosen()) == 0 {
				m.selected[m.cursor] = true
			}
			m.accepted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 5
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m packageListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select packages"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.packages))
	for i := m.offset; i < end; i++ {
		p := m.packages[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		mark := "[ ]"
		if m.selected[i] {
			mark = "[x]"
		}

		line := fmt.Sprintf("%s%s %s %s", cursor, mark,
			StyleValue.Render(p.Name),
			StyleDim.Render(fmt.Sprintf("%s · %d votes", p.Version, p.Votes)))
		if i == m.cursor {
			line = styleSpinner.Render(cursor+mark) + " " +
				StyleTitle.Render(p.Name) + " " +
				StyleDim.Render(fmt.Sprintf("%s · %d votes", p.Version, p.Votes))
		}
		b.WriteString(line)
		b.WriteString("\n")
		if i == m.cursor && p.Description != "" {
			b.WriteString("      " + StyleDim.Render(p.Description) + "\n")
		}
	}
	return b.String()
}

// chosen returns the names of the toggled packages in display order.
func (m packageListModel) chosen() []string {
	var names []string
	for i, p := range m.packages {
		if m.selected[i] {
			names = append(names, p.Name)
		}
	}
	return names
}

// pickPackages runs the interactive selector over search results and
// returns the chosen package names. An empty slice means the user quit
// without confirming.
func pickPackages(ctx context.Context, packages []faur.Package) ([]string, error) {
	final, err := tea.NewProgram(newPackageListModel(packages), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(packageListModel)
	if !m.accepted {
		return nil, nil
	}
	return m.chosen(), nil
}
