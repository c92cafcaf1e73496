package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/th3gh0s8/aura/pkg/integrations/faur"
)

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "down" {
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPackageListSelection(t *testing.T) {
	packages := []faur.Package{
		{Name: "aura", Version: "3.2.9"},
		{Name: "aura-bin", Version: "3.2.9"},
		{Name: "paru", Version: "2.0.1"},
	}

	var m tea.Model = newPackageListModel(packages)
	for _, key := range []string{" ", "down", "down", " ", "enter"} {
		m, _ = m.Update(keyMsg(key))
	}

	model := m.(packageListModel)
	if !model.accepted {
		t.Fatal("enter should confirm the selection")
	}
	got := model.chosen()
	want := []string{"aura", "paru"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("chosen = %v, want %v", got, want)
	}
}

func TestPackageListEnterSelectsCursorWhenNothingToggled(t *testing.T) {
	packages := []faur.Package{
		{Name: "aura"},
		{Name: "paru"},
	}

	var m tea.Model = newPackageListModel(packages)
	for _, key := range []string{"down", "enter"} {
		m, _ = m.Update(keyMsg(key))
	}

	model := m.(packageListModel)
	got := model.chosen()
	if len(got) != 1 || got[0] != "paru" {
		t.Errorf("chosen = %v, want just paru", got)
	}
}

func TestPackageListQuitWithoutAccepting(t *testing.T) {
	var m tea.Model = newPackageListModel([]faur.Package{{Name: "aura"}})
	m, _ = m.Update(keyMsg("q"))

	if m.(packageListModel).accepted {
		t.Error("q should quit without accepting")
	}
}

func TestProgressModelCountsConsideredPackages(t *testing.T) {
	var m tea.Model = progressModel{}
	m, _ = m.Update(progressEvent{line: "considering aura"})
	m, _ = m.Update(progressEvent{line: "aura is buildable"})
	m, _ = m.Update(progressEvent{line: "considering git"})

	model := m.(progressModel)
	if model.consider != 2 {
		t.Errorf("consider = %d, want 2", model.consider)
	}
	if model.last != "considering git" {
		t.Errorf("last = %q", model.last)
	}
}
