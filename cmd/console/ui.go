package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/questforge/questforge/pkg/game"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "Type your action here..."
)

// Setup modal phases, in order.
const (
	setupName = iota
	setupTheme
	setupLanguage
)

// storyLine is one transcript entry in the story panel.
type storyLine struct {
	player bool
	text   string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config        *ConsoleConfig
	client        *http.Client
	view          *game.SessionView
	transcript    []storyLine
	storyViewport viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	err           error
	loading       bool
	statusNote    string

	// Setup modal state
	showSetupModal bool
	setupPhase     int
	nameInput      textinput.Model
	langInput      textinput.Model
	selectedTheme  int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type sessionCreatedMsg struct {
	view *game.SessionView
	err  error
}

type turnMsg struct {
	view *game.SessionView
	err  error
}

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	achievementStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")). // gold
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	ni := textinput.New()
	ni.Placeholder = "Your name"
	ni.CharLimit = 50
	ni.Focus()

	li := textinput.New()
	li.Placeholder = "en"
	li.CharLimit = 10

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		client:         client,
		textarea:       ta,
		nameInput:      ni,
		langInput:      li,
		storyViewport:  storyVp,
		metaViewport:   metaVp,
		ready:          false,
		showSetupModal: true,
		setupPhase:     setupName,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle setup modal first
	if m.showSetupModal {
		return m.updateSetupModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.writeStoryContent()
		if m.view != nil {
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			if m.view != nil && m.view.IsComplete {
				m.statusNote = "The adventure has ended. Press Ctrl+C to quit."
				m.textarea.Reset()
				return m, nil
			}

			// A bare choice number picks that choice.
			if n := choiceNumber(input); n > 0 && m.view != nil && n <= len(m.view.Choices) {
				input = m.view.Choices[n-1]
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.statusNote = ""
			m.transcript = append(m.transcript, storyLine{player: true, text: input})
			m.writeStoryContent()

			return m, tea.Batch(m.submitAction(input), progressTick())
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.writeStoryContent()
			currentContent := m.storyViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.storyViewport.SetContent(currentContent + errorMsg)
		} else {
			m.recordTurn(msg.view)
			m.writeStoryContent()
			m.metaViewport.SetContent(m.writeMetadata())
		}
		m.storyViewport.GotoBottom()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// recordTurn folds a new view into the transcript, announcing fresh
// achievements as they unlock.
func (m *ConsoleUI) recordTurn(view *game.SessionView) {
	prevAchievements := map[string]bool{}
	if m.view != nil {
		for _, a := range m.view.Achievements {
			prevAchievements[a] = true
		}
	}

	m.view = view
	m.transcript = append(m.transcript, storyLine{text: view.Narrative})

	for _, a := range view.Achievements {
		if !prevAchievements[a] {
			m.transcript = append(m.transcript, storyLine{
				text: "Achievement unlocked: " + a,
			})
		}
	}
}

func (m *ConsoleUI) layout() {
	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(storyWidth - 4)
}

// writeStoryContent rebuilds the story panel from the transcript for
// the current viewport width.
func (m *ConsoleUI) writeStoryContent() {
	storyWidth := m.storyViewport.Width - 6
	if storyWidth < 20 {
		storyWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUESTFORGE") + "\n\n")
	content.WriteString("Type your actions below to shape the story.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n\n")

	for _, line := range m.transcript {
		if line.player {
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(line.text, storyWidth-6) + "\n\n")
			continue
		}
		if strings.HasPrefix(line.text, "Achievement unlocked:") {
			content.WriteString(achievementStyle.Render("★ "+line.text) + "\n\n")
			continue
		}
		prefix := narratorStyle.Render(AgentName + ": ")
		content.WriteString(prefix + wordwrap.String(line.text, storyWidth-len(AgentName)-2) + "\n\n")
	}

	if m.view != nil && m.view.IsComplete && !m.loading {
		if m.view.IsAlive {
			content.WriteString(titleStyle.Render("THE END") + "\n\n")
		} else {
			content.WriteString(errorStyle.Render("YOU HAVE PERISHED") + "\n\n")
		}
	} else if m.view != nil && len(m.view.Choices) > 0 && !m.loading {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", storyWidth)) + "\n")
		for i, c := range m.view.Choices {
			content.WriteString(choiceStyle.Render(fmt.Sprintf("%d. %s", i+1, c)) + "\n")
		}
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	if m.statusNote != "" {
		content.WriteString(loadingStyle.Render(m.statusNote) + "\n")
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() string {
	v := m.view
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURER") + "\n\n")

	content.WriteString(v.PlayerName + "\n")
	content.WriteString(promptStyle.Render(v.ID[:8]+"...") + "\n\n")

	content.WriteString(fmt.Sprintf("Health: %s\n", renderHealthBar(v.Health)))
	content.WriteString(fmt.Sprintf("Turn:   %d\n", v.TurnCount))
	content.WriteString(fmt.Sprintf("XP:     %d\n\n", v.Experience))

	content.WriteString("Inventory:\n")
	if len(v.Inventory) == 0 {
		content.WriteString(promptStyle.Render("Empty") + "\n")
	} else {
		for _, item := range v.Inventory {
			content.WriteString("• " + item + "\n")
		}
	}
	content.WriteString("\n")

	content.WriteString("Achievements:\n")
	if len(v.Achievements) == 0 {
		content.WriteString(promptStyle.Render("None yet") + "\n")
	} else {
		for _, a := range v.Achievements {
			content.WriteString("★ " + a + "\n")
		}
	}
	content.WriteString("\n")

	content.WriteString(fmt.Sprintf("Places found: %d\n", len(v.MapNodes)))
	for _, node := range v.MapNodes {
		marker := "  "
		if node.ID == v.CurrentNodeID {
			marker = "▶ "
		}
		content.WriteString(marker + node.Name + "\n")
	}
	content.WriteString("\n")

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Act\n")
	content.WriteString("• 1-4: Pick a choice\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /id: Copy session ID\n")

	return content.String()
}

func renderHealthBar(health int) string {
	const width = 10
	filled := health * width / game.MaxHealth
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	style := narratorStyle
	if health <= 30 {
		style = errorStyle
	} else if health <= 60 {
		style = loadingStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %d/%d", health, game.MaxHealth)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /id - Copy session ID to clipboard
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Enter a choice number (1-4) to pick a suggested choice
• Be descriptive for better responses
`
		currentContent := m.storyViewport.View()
		m.storyViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.storyViewport.GotoBottom()

	case "/id":
		if m.view != nil {
			if err := clipboard.WriteAll(m.view.ID); err != nil {
				m.statusNote = "Could not access clipboard: " + err.Error()
			} else {
				m.statusNote = "Session ID copied to clipboard."
			}
			m.writeStoryContent()
		}
	}

	m.textarea.Reset()
	return m, nil
}

// choiceNumber returns n for a bare "1".."9" input, else 0.
func choiceNumber(input string) int {
	if len(input) != 1 || input[0] < '1' || input[0] > '9' {
		return 0
	}
	return int(input[0] - '0')
}

func (m ConsoleUI) submitAction(action string) tea.Cmd {
	return func() tea.Msg {
		view, err := sendAction(m.client, m.config.APIBaseURL, m.view.ID, action)
		return turnMsg{view, err}
	}
}

func (m ConsoleUI) createSession(playerName, theme, language string) tea.Cmd {
	return func() tea.Msg {
		view, err := createGame(m.client, m.config.APIBaseURL, playerName, theme, language)
		return sessionCreatedMsg{view, err}
	}
}

func (m ConsoleUI) updateSetupModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.view = msg.view
		m.transcript = append(m.transcript, storyLine{text: msg.view.Narrative})
		m.showSetupModal = false
		if m.width > 0 && m.height > 0 {
			m.layout()
		}
		m.writeStoryContent()
		m.metaViewport.SetContent(m.writeMetadata())
		m.textarea.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyUp:
			if m.setupPhase == setupTheme && m.selectedTheme > 0 {
				m.selectedTheme--
			}
			return m, nil

		case tea.KeyDown:
			if m.setupPhase == setupTheme && m.selectedTheme < len(game.Themes())-1 {
				m.selectedTheme++
			}
			return m, nil

		case tea.KeyEnter:
			switch m.setupPhase {
			case setupName:
				if strings.TrimSpace(m.nameInput.Value()) == "" {
					return m, nil
				}
				m.setupPhase = setupTheme
				m.nameInput.Blur()
				return m, nil
			case setupTheme:
				m.setupPhase = setupLanguage
				m.langInput.Focus()
				return m, textinput.Blink
			case setupLanguage:
				lang := strings.TrimSpace(m.langInput.Value())
				if lang == "" {
					lang = "en"
				}
				name := strings.TrimSpace(m.nameInput.Value())
				theme := string(game.Themes()[m.selectedTheme])
				m.err = nil
				m.loading = true
				return m, m.createSession(name, theme, lang)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.setupPhase {
	case setupName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case setupLanguage:
		m.langInput, cmd = m.langInput.Update(msg)
	}
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showSetupModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSetupModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Adventure..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("The narrator is setting the scene..."))
	} else {
		content.WriteString(modalTitleStyle.Render("New Adventure"))
		content.WriteString("\n\n")

		if m.err != nil {
			content.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			content.WriteString("\n\n")
		}

		switch m.setupPhase {
		case setupName:
			content.WriteString("What is your name?\n\n")
			content.WriteString(m.nameInput.View())
			content.WriteString("\n\n")
			content.WriteString(promptStyle.Render("Enter to continue, Ctrl+C to exit"))

		case setupTheme:
			content.WriteString("Choose your setting:\n\n")
			for i, theme := range game.Themes() {
				if i == m.selectedTheme {
					content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", theme)))
				} else {
					content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", theme)))
				}
				content.WriteString("\n")
			}
			content.WriteString("\n")
			content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select"))

		case setupLanguage:
			content.WriteString("Story language (BCP 47 tag, blank for English):\n\n")
			content.WriteString(m.langInput.View())
			content.WriteString("\n\n")
			content.WriteString(promptStyle.Render("Enter to begin your adventure"))
		}
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSetupModal {
		return m.renderSetupModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
