package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Launcher builds a live model for the named preset.
type Launcher func(preset string) (Model, error)

const (
	stateMenu = iota
	stateLive
)

// Picker lists presets and hands over to the live view once one is chosen.
type Picker struct {
	state   int
	cursor  int
	presets []string
	info    map[string]string
	launch  Launcher
	err     error
	styles  styles
	live    Model
}

// NewPicker shows presets in order; info holds an optional one-line
// description per preset.
func NewPicker(presets []string, info map[string]string, launch Launcher) Picker {
	return Picker{presets: presets, info: info, launch: launch, styles: newStyles(Themes[0])}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		p.cursor = max(0, p.cursor-1)
	case "down", "j":
		p.cursor = min(len(p.presets)-1, p.cursor+1)
	case "enter", " ":
		if len(p.presets) == 0 {
			return p, nil
		}
		live, err := p.launch(p.presets[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live, p.state, p.err = live, stateLive, nil
		return p, live.Init()
	}
	return p, nil
}

// Selected returns the highlighted preset name.
func (p Picker) Selected() string {
	if len(p.presets) == 0 {
		return ""
	}
	return p.presets[p.cursor]
}

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	st := p.styles
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("ARMSIM") + "\n")
	b.WriteString("    " + st.subtle.Render("time-optimal arm playback") + "\n    " + st.divider + "\n\n")
	for i, name := range p.presets {
		desc := p.info[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.active.Render("▸"), st.active.Render(fmt.Sprintf("%-12s", name)), st.value.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.subtle.Render(fmt.Sprintf("%-12s", name)), st.subtle.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + st.bad.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.hint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}
