package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/storyforge/narrative-engine/internal/handlers"
	"github.com/storyforge/narrative-engine/internal/storage"
	"github.com/storyforge/narrative-engine/pkg/events"
)

const PlaceHolderText = "Type a choice, or /help for commands..."

// logKind classifies a console log line for styling.
type logKind int

const (
	logUser logKind = iota
	logEngine
	logEvent
	logError
	logInfo
)

type logEntry struct {
	kind logKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *storage.Session
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	log          []logEntry
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Campaign selection state
	showCampaignModal bool
	campaigns         []string
	campaignMap       map[string]string
	selectedCampaign  int
	loadingCampaigns  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int

	// Fact stream state
	sseEvents chan SSEEvent
	sseCancel context.CancelFunc
}

type factResultMsg struct {
	label  string
	result *FactResult
	err    error
}

type sessionMsg struct {
	session *storage.Session
	err     error
}

type campaignsLoadedMsg struct {
	campaigns   []string
	campaignMap map[string]string
	err         error
}

type sessionCreatedMsg struct {
	session *storage.Session
	err     error
}

type questsMsg struct {
	lines []string
	err   error
}

type relationshipsMsg struct {
	lines []string
	err   error
}

type sseEventMsg SSEEvent

type progressTickMsg struct{}

var (
	logPanelStyle = lipgloss.NewStyle().
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

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:            cfg,
		client:            client,
		textarea:          ta,
		logViewport:       logVp,
		metaViewport:      metaVp,
		ready:             false,
		showCampaignModal: true,
		loadingCampaigns:  true,
		selectedCampaign:  0,
	}
}

func writeMetadata(s *storage.Session) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("Session ID:\n")
	content.WriteString(s.ID.String()[:8] + "...\n\n")

	content.WriteString("Campaign:\n")
	content.WriteString(s.Campaign + "\n\n")

	content.WriteString(fmt.Sprintf("World Day: %d\n\n", s.WorldDay))

	q := s.Snapshot.Quests
	content.WriteString("Quests:\n")
	content.WriteString(fmt.Sprintf("• %d active\n", len(q.Active)))
	content.WriteString(fmt.Sprintf("• %d pending\n", len(q.Pending)))
	content.WriteString(fmt.Sprintf("• %d completed\n", len(q.Completed)))
	content.WriteString(fmt.Sprintf("• %d failed\n", len(q.Failed)))
	content.WriteString(fmt.Sprintf("• %d retired\n\n", len(q.Retired)))

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /quests: Quests\n")

	return content.String()
}

// writeLogContent rebuilds the log viewport from the entry list for the
// current viewport width.
func (m *ConsoleUI) writeLogContent() {
	logWidth := m.logViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("NARRATIVE ENGINE") + "\n\n")
	content.WriteString("Record choices and facts below to drive the story.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", logWidth-6)) + "\n\n")

	for _, entry := range m.log {
		wrapped := wordwrap.String(entry.text, logWidth-6)
		switch entry.kind {
		case logUser:
			content.WriteString(userStyle.Render("You: ") + wrapped + "\n\n")
		case logEngine:
			content.WriteString(engineStyle.Render(wrapped) + "\n\n")
		case logEvent:
			content.WriteString(eventStyle.Render(wrapped) + "\n")
		case logError:
			content.WriteString(errorStyle.Render(wrapped) + "\n\n")
		case logInfo:
			content.WriteString(wrapped + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
}

func (m *ConsoleUI) appendLog(kind logKind, text string) {
	m.log = append(m.log, logEntry{kind: kind, text: text})
	m.writeLogContent()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showCampaignModal {
		return m.loadCampaigns()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle campaign modal first
	if m.showCampaignModal {
		return m.updateCampaignModal(msg)
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
		// Pass all mouse events to the log viewport for scrolling; the
		// viewport component ignores events outside its bounds.
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)

		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(logWidth - 4)

		// Reformat all content for the new width
		m.ready = true
		m.writeLogContent()

		if m.session != nil {
			m.metaViewport.SetContent(writeMetadata(m.session))
		}

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

			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			// Free text records a player choice.
			m.loading = true
			m.progressTick = 0
			m.appendLog(logUser, input)
			req := handlers.RecordFactRequest{
				Type:   "choice",
				Choice: &events.Choice{Description: input},
			}
			return m, tea.Batch(m.recordFactCmd("choice recorded", req), progressTick())
		}

	case factResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.appendLog(logError, "Error: "+msg.err.Error())
		} else {
			m.appendLog(logEngine, fmt.Sprintf("%s (%s)", msg.label, msg.result.Status))
		}
		return m, m.refreshSession()

	case sessionMsg:
		if msg.err == nil && msg.session != nil {
			m.session = msg.session
			m.metaViewport.SetContent(writeMetadata(m.session))
		}

	case questsMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(logError, "Error: "+msg.err.Error())
		} else {
			m.appendLog(logInfo, strings.Join(msg.lines, "\n"))
		}

	case relationshipsMsg:
		m.loading = false
		if msg.err != nil {
			m.appendLog(logError, "Error: "+msg.err.Error())
		} else {
			m.appendLog(logInfo, strings.Join(msg.lines, "\n"))
		}

	case sseEventMsg:
		m.appendLog(logEvent, formatFactEvent(SSEEvent(msg)))
		return m, tea.Batch(m.waitForFactEvent(), m.refreshSession())

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeLogContent()
			return m, progressTick()
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// formatFactEvent renders a streamed fact as a single log line.
func formatFactEvent(ev SSEEvent) string {
	if ev.Type == "connected" {
		return "· fact stream connected"
	}
	var details []string
	for _, key := range []string{"quest_id", "title", "npc", "faction", "reason"} {
		if v, ok := ev.Data[key].(string); ok && v != "" {
			details = append(details, v)
		}
	}
	if len(details) == 0 {
		return "· " + ev.Type
	}
	return fmt.Sprintf("· %s: %s", ev.Type, strings.Join(details, " / "))
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /day [n] - Advance the world by n days (default 1)
• /trust <npc> <delta> [reason] - Adjust trust toward an NPC
• /world <kind> [location] - Record a world event
• /quests - Show active quests
• /relationships - Show the relationship context
• /help - Show this help
• Ctrl+C - Quit

Anything else you type is recorded as a player choice.
`
		m.appendLog(logInfo, titleStyle.Render("Help:")+helpText)
		return m, nil

	case "/day":
		days := 1
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				days = n
			}
		}
		m.loading = true
		m.progressTick = 0
		m.appendLog(logUser, fmt.Sprintf("%d day(s) pass", days))
		req := handlers.RecordFactRequest{Type: "day_passed", Days: days}
		return m, tea.Batch(m.recordFactCmd("time advanced", req), progressTick())

	case "/trust":
		if len(args) < 2 {
			m.appendLog(logError, "Usage: /trust <npc> <delta> [reason]")
			return m, nil
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			m.appendLog(logError, "Delta must be a number: "+args[1])
			return m, nil
		}
		reason := "console adjustment"
		if len(args) > 2 {
			reason = strings.Join(args[2:], " ")
		}
		m.loading = true
		m.progressTick = 0
		m.appendLog(logUser, fmt.Sprintf("trust %s %+d (%s)", args[0], delta, reason))
		req := handlers.RecordFactRequest{
			Type:         "relationship",
			Relationship: &events.RelationshipChange{NPC: args[0], Delta: delta, Reason: reason},
		}
		return m, tea.Batch(m.recordFactCmd("relationship updated", req), progressTick())

	case "/world":
		if len(args) < 1 {
			m.appendLog(logError, "Usage: /world <kind> [location]")
			return m, nil
		}
		location := ""
		if len(args) > 1 {
			location = args[1]
		}
		m.loading = true
		m.progressTick = 0
		m.appendLog(logUser, fmt.Sprintf("world event: %s %s", args[0], location))
		req := handlers.RecordFactRequest{
			Type:  "world_event",
			World: &events.WorldEvent{Kind: args[0], Location: location},
		}
		return m, tea.Batch(m.recordFactCmd("world event recorded", req), progressTick())

	case "/quests":
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.loadQuests(), progressTick())

	case "/relationships":
		m.loading = true
		m.progressTick = 0
		return m, tea.Batch(m.loadRelationships(), progressTick())

	default:
		m.appendLog(logError, "Unknown command: "+cmd)
	}

	return m, nil
}

func (m ConsoleUI) recordFactCmd(label string, req handlers.RecordFactRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := recordFact(m.client, m.config.APIBaseURL, m.session.ID, req)
		return factResultMsg{label, result, err}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		s, err := getSession(m.client, m.config.APIBaseURL, m.session.ID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) loadCampaigns() tea.Cmd {
	return func() tea.Msg {
		orderedNames, campaignMap, err := listCampaigns(m.client, m.config.APIBaseURL)
		return campaignsLoadedMsg{orderedNames, campaignMap, err}
	}
}

func (m ConsoleUI) createSessionFromCampaign(campaignFile string) tea.Cmd {
	return func() tea.Msg {
		s, err := createSession(m.client, m.config.APIBaseURL, campaignFile)
		return sessionCreatedMsg{s, err}
	}
}

func (m ConsoleUI) loadQuests() tea.Cmd {
	return func() tea.Msg {
		quests, err := listQuests(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return questsMsg{nil, err}
		}
		lines := []string{titleStyle.Render("Active Quests:")}
		if len(quests) == 0 {
			lines = append(lines, "No active quests.")
		}
		for _, q := range quests {
			lines = append(lines, fmt.Sprintf("• [%s] %s (%s, stakes %s, %d paths)",
				q.Type, q.Title, q.ID, q.Context.Stakes, len(q.SolutionPaths)))
		}
		return questsMsg{lines, nil}
	}
}

func (m ConsoleUI) loadRelationships() tea.Cmd {
	return func() tea.Msg {
		rc, err := getRelationships(m.client, m.config.APIBaseURL, m.session.ID)
		if err != nil {
			return relationshipsMsg{nil, err}
		}
		lines := []string{titleStyle.Render("Relationships:")}

		var npcIDs []string
		for id := range rc.Individual {
			npcIDs = append(npcIDs, id)
		}
		sort.Strings(npcIDs)
		for _, id := range npcIDs {
			npc := rc.Individual[id]
			lines = append(lines, fmt.Sprintf("• %s: trust %d (%s)", npc.Name, npc.TrustLevel, npc.Type))
		}

		var factionIDs []string
		for id := range rc.Factions {
			factionIDs = append(factionIDs, id)
		}
		sort.Strings(factionIDs)
		for _, id := range factionIDs {
			f := rc.Factions[id]
			lines = append(lines, fmt.Sprintf("• %s: reputation %d (%s)", f.Name, f.Reputation, f.Level))
		}

		if len(lines) == 1 {
			lines = append(lines, "No tracked relationships.")
		}
		return relationshipsMsg{lines, nil}
	}
}

// waitForFactEvent blocks on the fact stream channel and converts the
// next event into a tea message.
func (m ConsoleUI) waitForFactEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.sseEvents
		if !ok {
			return nil
		}
		return sseEventMsg(ev)
	}
}

// startFactStream begins the SSE subscription for the session.
func (m *ConsoleUI) startFactStream() {
	ctx, cancel := context.WithCancel(context.Background())
	m.sseCancel = cancel
	m.sseEvents = make(chan SSEEvent, 16)
	events := m.sseEvents
	go func() {
		defer close(events)
		// SSE needs a client without a request timeout.
		streamClient := &http.Client{}
		_ = listenToSSE(ctx, streamClient, m.config.APIBaseURL, m.session.ID, events)
	}()
}

func (m ConsoleUI) updateCampaignModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case campaignsLoadedMsg:
		m.loadingCampaigns = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.campaigns = msg.campaigns
			m.campaignMap = msg.campaignMap
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.session = msg.session
			m.showCampaignModal = false
			if m.width > 0 && m.height > 0 {
				logWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - logWidth - 6
				m.logViewport.Width = logWidth - 2
				m.logViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(logWidth - 4)
			}
			m.writeLogContent()
			m.metaViewport.SetContent(writeMetadata(m.session))
			m.textarea.Focus()
			m.ready = true
			m.startFactStream()
			return m, tea.Batch(textarea.Blink, m.waitForFactEvent())
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingCampaigns {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				m.showQuitModal = true
				return m, nil
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedCampaign > 0 {
				m.selectedCampaign--
			}
		case tea.KeyDown:
			if m.selectedCampaign < len(m.campaigns)-1 {
				m.selectedCampaign++
			}
		case tea.KeyEnter:
			if len(m.campaigns) > 0 {
				campaignName := m.campaigns[m.selectedCampaign]
				campaignFile := m.campaignMap[campaignName]
				m.loading = true
				return m, m.createSessionFromCampaign(campaignFile)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			m.stopFactStream()
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				m.stopFactStream()
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showCampaignModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m *ConsoleUI) stopFactStream() {
	if m.sseCancel != nil {
		m.sseCancel()
	}
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Session?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave this playthrough?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderCampaignModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingCampaigns {
		content.WriteString(modalTitleStyle.Render("Loading Campaigns..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available campaigns..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load campaigns: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Session..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Seeding the world..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Campaign"))
		content.WriteString("\n\n")

		for i, campaign := range m.campaigns {
			if i == m.selectedCampaign {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", campaign)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", campaign)))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCampaignModal {
		return m.renderCampaignModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.logViewport.Width - 6
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
