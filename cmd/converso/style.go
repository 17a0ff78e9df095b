package main

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Header            lipgloss.Style
	Sidebar           lipgloss.Style
	SidebarHeader     lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarActive     lipgloss.Style
	UnselectedMessage lipgloss.Style
	SelectedMessage   lipgloss.Style
	FocusedMessage    lipgloss.Style
	ErrorMessage      lipgloss.Style
}

type BorderColors struct {
	Unselected string
	Selected   string
	Focused    string
	Error      string
}

func DefaultStyles() *Style {
	lightModeColors := BorderColors{
		Unselected: "#CCCCCC",
		Selected:   "#FFB6C1", // Light pink
		Focused:    "#FFFF99", // Light yellow
		Error:      "#CC4444",
	}

	darkModeColors := BorderColors{
		Unselected: "#444444",
		Selected:   "#DD7090", // Desaturated pink for dark mode
		Focused:    "#DDDD77", // Desaturated yellow for dark mode
		Error:      "#AA3333",
	}

	return &Style{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Sidebar: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Unselected,
				Dark:  darkModeColors.Unselected,
			}),
		SidebarHeader: lipgloss.NewStyle().Bold(true),
		SidebarItem:   lipgloss.NewStyle(),
		SidebarActive: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Selected,
				Dark:  darkModeColors.Selected,
			}),
		UnselectedMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(1, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Unselected,
				Dark:  darkModeColors.Unselected,
			}),
		SelectedMessage: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).
			Padding(1, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Selected,
				Dark:  darkModeColors.Selected,
			}),
		FocusedMessage: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(1, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Focused,
				Dark:  darkModeColors.Focused,
			}),
		ErrorMessage: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).
			Padding(1, 1).
			BorderForeground(lipgloss.AdaptiveColor{
				Light: lightModeColors.Error,
				Dark:  darkModeColors.Error,
			}),
	}
}
