package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the terminal output.
var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")). // cyan
			Padding(0, 1)

	welcomeBodyStyle = lipgloss.NewStyle().PaddingLeft(1)

	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green

	resultPrefixStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan

	resultBoxStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("6"))

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
)
