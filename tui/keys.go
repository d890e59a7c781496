package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/user/clip-trimmer/tui/components"
)

type keyMap struct {
	SwitchEdge key.Binding
	Back       key.Binding
	Forward    key.Binding
	StepDown   key.Binding
	StepUp     key.Binding
	Mark       key.Binding
	Range      key.Binding
	Audio      key.Binding
	Export     key.Binding
	Retry      key.Binding
	Reset      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		SwitchEdge: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch start/end")),
		Back:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move edge back")),
		Forward:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move edge forward")),
		StepDown:   key.NewBinding(key.WithKeys("<", ","), key.WithHelp("<", "smaller step")),
		StepUp:     key.NewBinding(key.WithKeys(">", "."), key.WithHelp(">", "larger step")),
		Mark:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "edge to player position")),
		Range:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "type a range")),
		Audio:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle audio")),
		Export:     key.NewBinding(key.WithKeys("e", "ctrl+e"), key.WithHelp("e", "export clip")),
		Retry:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "load engine")),
		Reset:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset session")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp and FullHelp satisfy help.KeyMap for the footer line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchEdge, k.Back, k.Forward, k.Range, k.Audio, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.SwitchEdge, k.Back, k.Forward, k.StepDown, k.StepUp, k.Mark, k.Range},
		{k.Audio, k.Export, k.Retry, k.Reset},
		{k.Help, k.Quit},
	}
}

// helpGroups feeds the help overlay from the same bindings as the footer.
func (k keyMap) helpGroups() []components.HelpGroup {
	titles := []string{"Range", "Clip", "General"}
	groups := make([]components.HelpGroup, 0, len(titles))
	for i, bindings := range k.FullHelp() {
		g := components.HelpGroup{Title: titles[i]}
		for _, b := range bindings {
			h := b.Help()
			g.Rows = append(g.Rows, [2]string{h.Key, h.Desc})
		}
		groups = append(groups, g)
	}
	return groups
}
