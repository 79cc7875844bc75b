package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("62")
	subtle = lipgloss.Color("241")

	titleStyle = lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1).
			Bold(true)

	helpStyle   = lipgloss.NewStyle().Foreground(subtle)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	userLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	agentLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	systemLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent)

	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(accent).
			PaddingLeft(1)
	tentativeCard = cardStyle.BorderForeground(lipgloss.Color("214"))
	cancelledCard = cardStyle.BorderForeground(subtle).Foreground(subtle).Strikethrough(true)

	carouselCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1).
			MarginRight(1)
)
