package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/review-gate/internal/core"
)

const asciiLogo = `
╔══════════════════════════════════════════════════════════════════════╗
║                                                                      ║
║    ██████╗ ███████╗██╗   ██╗██╗███████╗██╗    ██╗                    ║
║    ██╔══██╗██╔════╝██║   ██║██║██╔════╝██║    ██║                    ║
║    ██████╔╝█████╗  ██║   ██║██║█████╗  ██║ █╗ ██║                    ║
║    ██╔══██╗██╔══╝  ╚██╗ ██╔╝██║██╔══╝  ██║███╗██║                    ║
║    ██║  ██║███████╗ ╚████╔╝ ██║███████╗╚███╔███╔╝█████╗              ║
║    ╚═╝  ╚═╝╚══════╝  ╚═══╝  ╚═╝╚══════╝ ╚══╝╚══╝ ╚════╝ GATE         ║
║                                                                      ║
║                REVIEW RECOVERY WORKBENCH v1.0                        ║
║                                                                      ║
╚══════════════════════════════════════════════════════════════════════╝
`

type model struct {
	styles styles

	// UI Components
	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool

	// Session State
	responsePath string
	raw          string
	ranges       map[string][]core.DiffRange
	filter       core.FilterConfig
	lastTier     string
	lastReview   *core.StructuredReview
	history      []string
}

func initialModel(theme ThemeName) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter command, e.g. /load response.txt"
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:   styles,
		textarea: ta,
		spinner:  sp,
		ranges:   make(map[string][]core.DiffRange),
		history: []string{
			styles.ascii.Render(asciiLogo),
			"",
			"Load a saved model response and replay it through the recovery pipeline.",
			"Type /help for commands.",
		},
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case responseLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
			return m, nil
		}
		m.responsePath = msg.path
		m.raw = msg.raw
		m.lastReview = nil
		m.lastTier = ""
		m.appendHistory(
			m.styles.success.Render(fmt.Sprintf("✓ LOADED: %s (%d bytes)", msg.path, len(msg.raw))),
			m.styles.inactive.Render("Use /run to recover a structured review."),
		)
		return m, nil

	case patchLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
			return m, nil
		}
		m.ranges[msg.path] = msg.ranges
		m.appendHistory(m.styles.success.Render(
			fmt.Sprintf("✓ PATCH REGISTERED: %s (%d changed-line ranges)", msg.path, len(msg.ranges))))
		return m, nil

	case reviewRecoveredMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
			return m, nil
		}
		m.lastReview = msg.review
		m.lastTier = msg.tier
		m.appendHistory(m.renderResult(msg)...)
		return m, nil

	case errorMsg:
		m.isLoading = false
		m.appendHistory(m.styles.error.Render("⚠ " + msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) View() string {
	var statusParts []string
	if m.responsePath != "" {
		statusParts = append(statusParts, fmt.Sprintf("RESPONSE: %s", m.responsePath))
	} else {
		statusParts = append(statusParts, "RESPONSE: none loaded")
	}
	statusParts = append(statusParts, fmt.Sprintf("PATCHES: %d", len(m.ranges)))

	if m.filter.MinSeverity != "" {
		statusParts = append(statusParts, fmt.Sprintf("MIN: %s", m.filter.MinSeverity))
	}
	if m.filter.MaxComments > 0 {
		statusParts = append(statusParts, fmt.Sprintf("CAP: %d", m.filter.MaxComments))
	}
	if m.lastTier != "" {
		statusParts = append(statusParts, m.styles.success.Render("TIER: "+m.lastTier))
	}

	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("PROCESSING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) appendHistory(lines ...string) {
	m.history = append(m.history, "")
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

// renderResult formats the recovered review for the history view.
func (m *model) renderResult(msg reviewRecoveredMsg) []string {
	lines := []string{
		m.styles.success.Render(fmt.Sprintf("✓ RECOVERED via %s tier", msg.tier)),
		"",
		msg.rendered,
	}

	if core.IsFailureSentinel(msg.review.Summary) {
		lines = append(lines, m.styles.error.Render("This review is degraded; the service would suppress it."))
		return lines
	}

	if len(msg.review.Comments) == 0 {
		lines = append(lines, m.styles.inactive.Render("No comments survived recovery and filtering."))
		return lines
	}

	lines = append(lines, m.styles.command.Render(fmt.Sprintf("COMMENTS (%d):", len(msg.review.Comments))))
	for _, c := range msg.review.Comments {
		label := string(c.Priority)
		if label == "" {
			label = "unrated"
		}
		lines = append(lines,
			fmt.Sprintf("  %s %s%s",
				m.styles.prompt.Render("["+label+"]"),
				m.styles.success.Render(c.Path),
				m.styles.inactive.Render(fmt.Sprintf(":%d", c.Line))),
			"    "+strings.ReplaceAll(c.Body, "\n", "\n    "),
		)
	}
	return lines
}

func (m *model) processCommand(input string) tea.Cmd {
	m.history = append(m.history, m.styles.prompt.Render("► ")+input)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	switch command {
	case "/load":
		if len(args) != 1 {
			m.appendHistory(m.styles.error.Render("USAGE: /load [response-file]"))
			return nil
		}
		m.isLoading = true
		return tea.Batch(m.spinner.Tick, loadResponseCmd(args[0]))

	case "/patch":
		if len(args) != 2 {
			m.appendHistory(m.styles.error.Render("USAGE: /patch [file-path] [patch-file]"))
			return nil
		}
		m.isLoading = true
		return tea.Batch(m.spinner.Tick, loadPatchCmd(args[0], args[1]))

	case "/filter":
		if len(args) < 1 || len(args) > 2 {
			m.appendHistory(m.styles.error.Render("USAGE: /filter [min-severity] [max-comments]"))
			return nil
		}
		severity := core.ParsePriority(args[0])
		if severity == "" && args[0] != "none" {
			m.appendHistory(m.styles.error.Render("Severity must be critical, high, medium, low or none."))
			return nil
		}
		m.filter.MinSeverity = severity
		m.filter.MaxComments = 0
		if len(args) == 2 {
			var max int
			if _, err := fmt.Sscanf(args[1], "%d", &max); err != nil || max < 0 {
				m.appendHistory(m.styles.error.Render("Max comments must be a non-negative number."))
				return nil
			}
			m.filter.MaxComments = max
		}
		m.appendHistory(m.styles.success.Render("✓ Filter updated."))
		return nil

	case "/run", "/r":
		if m.raw == "" {
			m.appendHistory(m.styles.error.Render("No response loaded. Use /load first."))
			return nil
		}
		m.isLoading = true
		m.appendHistory(m.styles.command.Render("→ RECOVERING STRUCTURED REVIEW..."))
		return tea.Batch(m.spinner.Tick, recoverReviewCmd(m.raw, m.ranges, m.filter))

	case "/reset":
		m.responsePath = ""
		m.raw = ""
		m.ranges = make(map[string][]core.DiffRange)
		m.filter = core.FilterConfig{}
		m.lastReview = nil
		m.lastTier = ""
		m.appendHistory(m.styles.success.Render("✓ Session cleared."))
		return nil

	case "/help", "/h":
		helpText := m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /load [file]                 Load a saved model response.
  /patch [path] [patchfile]    Register a unified diff to anchor comments.
  /filter [severity] [max]     Set severity floor and comment cap ("none" clears).
  /run, /r                     Run the recovery pipeline on the loaded response.
  /reset                       Clear the session state.
  /help                        Show this help message.
  /exit, /quit                 Exit.

  ` + m.styles.inactive.Render("TIP: without patches, comment anchoring is skipped entirely")
		m.appendHistory(helpText)
		return nil

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.appendHistory(
			m.styles.error.Render(fmt.Sprintf("UNKNOWN COMMAND: %s", command)),
			m.styles.inactive.Render("Type /help for assistance."),
		)
		return nil
	}
}
