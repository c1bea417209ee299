package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/storyloom/pkg/engine"
	"github.com/jwebster45206/storyloom/pkg/export"
	"github.com/jwebster45206/storyloom/pkg/gateway"
	"github.com/jwebster45206/storyloom/pkg/story"
	"github.com/muesli/reflow/wordwrap"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config *ConsoleConfig
	client *gateway.Client
	engine *engine.Engine

	onboarding     onboarding
	showOnboarding bool

	storyViewport viewport.Model
	spinner       spinner.Model
	pathInput     textinput.Model
	importing     bool

	snapshot engine.Snapshot
	status   string
	ready    bool
	width    int
	height   int

	showQuitModal bool
	turning       bool
	progressTick  int
}

type snapshotMsg engine.Snapshot

type turnDoneMsg struct {
	err error
}

type suggestionsMsg struct {
	suggestions []story.StorySuggestion
	err         error
}

type statusMsg string

type progressTickMsg struct{}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(3)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	pageNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Italic(true)

	optionCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	optionKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

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
			Bold(true)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *gateway.Client, eng *engine.Engine) ConsoleUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	pi := textinput.New()
	pi.Placeholder = "path/to/story.json"
	pi.CharLimit = 500
	pi.Width = 50

	return ConsoleUI{
		config:         cfg,
		client:         client,
		engine:         eng,
		onboarding:     newOnboarding(),
		showOnboarding: true,
		storyViewport:  vp,
		spinner:        sp,
		pathInput:      pi,
		snapshot:       engine.Snapshot{State: eng.State(), Phase: eng.Phase()},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m ConsoleUI) busy() bool {
	return m.turning || m.snapshot.Phase != engine.PhaseIdle
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.storyViewport.Width = msg.Width - 6
		m.storyViewport.Height = msg.Height - 5
		m.ready = true
		m.writeStoryContent()
		return m, nil

	case snapshotMsg:
		m.snapshot = engine.Snapshot(msg)
		m.writeStoryContent()
		return m, nil

	case turnDoneMsg:
		m.turning = false
		m.snapshot = engine.Snapshot{State: m.engine.State(), Phase: m.engine.Phase(), Err: m.engine.Err()}
		m.writeStoryContent()
		return m, nil

	case suggestionsMsg:
		m.onboarding.suggestionsLoading = false
		m.onboarding.suggestions = msg.suggestions
		m.onboarding.suggestionsErr = msg.err
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.writeStoryContent()
		}
		return m, cmd

	case progressTickMsg:
		if m.turning {
			m.progressTick++
			m.writeStoryContent()
			return m, progressTick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.showQuitModal {
			return m.updateQuitModal(msg)
		}
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if m.showOnboarding {
			return m.updateOnboarding(msg)
		}
		if m.importing {
			return m.updateImport(msg)
		}
		return m.updateStory(msg)
	}

	var cmd tea.Cmd
	m.storyViewport, cmd = m.storyViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateOnboarding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.showQuitModal = true
		return m, nil
	}

	next, enteredTheme, cmd := m.onboarding.update(msg)
	m.onboarding = next

	if enteredTheme {
		return m, tea.Batch(cmd, m.fetchSuggestions(next.suggestionRequest()))
	}
	if next.step == stepDone {
		m.showOnboarding = false
		m.engine.UpdateStoryMeta(next.meta())
		return m, m.startTurn(func(ctx context.Context) error {
			return m.engine.GenerateInitialPage(ctx)
		})
	}
	return m, cmd
}

func (m ConsoleUI) updateStory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.showQuitModal = true
		return m, nil
	}

	key := msg.String()
	if n, err := strconv.Atoi(key); err == nil {
		page := m.snapshot.State.CurrentPage()
		if m.busy() || page == nil || n < 1 || n > len(page.Options) {
			return m, nil
		}
		optionID := page.Options[n-1].ID
		return m, m.startTurn(func(ctx context.Context) error {
			return m.engine.ChooseOption(ctx, optionID)
		})
	}

	switch key {
	case "e":
		return m, m.exportJSON()
	case "i":
		if m.busy() {
			return m, nil
		}
		m.importing = true
		m.pathInput.SetValue("")
		return m, m.pathInput.Focus()
	case "r":
		if m.busy() {
			return m, nil
		}
		m.engine.ResetStory()
		m.showOnboarding = true
		m.onboarding = newOnboarding()
		m.status = ""
		return m, nil
	case "p":
		return m, m.exportPDF()
	case "g":
		// retry the first page after a failure
		if !m.busy() && len(m.snapshot.State.Pages) == 0 {
			return m, m.startTurn(func(ctx context.Context) error {
				return m.engine.GenerateInitialPage(ctx)
			})
		}
		return m, nil
	case "q":
		m.showQuitModal = true
		return m, nil
	}

	var cmd tea.Cmd
	m.storyViewport, cmd = m.storyViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.importing = false
		m.pathInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.importing = false
		m.pathInput.Blur()
		path := strings.TrimSpace(m.pathInput.Value())
		data, err := os.ReadFile(path)
		if err != nil {
			m.status = "Import failed: " + err.Error()
			return m, nil
		}
		if err := m.engine.ImportState(string(data)); err != nil {
			m.status = "Import failed: " + err.Error()
			return m, nil
		}
		m.status = "Imported " + path
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEnter:
		return m, tea.Quit
	}
	switch msg.String() {
	case "y", "Y":
		return m, tea.Quit
	case "n", "N", "esc":
		m.showQuitModal = false
	}
	return m, nil
}

// startTurn runs a blocking engine operation off the UI goroutine.
func (m *ConsoleUI) startTurn(run func(ctx context.Context) error) tea.Cmd {
	m.turning = true
	m.progressTick = 0
	m.status = ""
	turn := func() tea.Msg {
		return turnDoneMsg{err: run(context.Background())}
	}
	return tea.Batch(turn, progressTick())
}

func (m ConsoleUI) fetchSuggestions(req story.SuggestionRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.FetchSuggestions(context.Background(), req)
		if err != nil {
			return suggestionsMsg{err: err}
		}
		return suggestionsMsg{suggestions: resp.Suggestions}
	}
}

func (m ConsoleUI) exportJSON() tea.Cmd {
	return func() tea.Msg {
		data, err := m.engine.ExportState()
		if err != nil {
			return statusMsg("Export failed: " + err.Error())
		}
		path := filepath.Join(m.config.ExportDir, fmt.Sprintf("story-%s.json", time.Now().Format("20060102-150405")))
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return statusMsg("Export failed: " + err.Error())
		}
		if err := clipboard.WriteAll(data); err != nil {
			return statusMsg("Saved " + path + " (clipboard unavailable)")
		}
		return statusMsg("Saved " + path + " and copied to clipboard")
	}
}

func (m ConsoleUI) exportPDF() tea.Cmd {
	return func() tea.Msg {
		s := m.engine.State()
		data, err := m.client.ExportPDF(context.Background(), s)
		if err != nil {
			return statusMsg("PDF export failed: " + err.Error())
		}
		path := filepath.Join(m.config.ExportDir, export.Filename(s))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return statusMsg("PDF export failed: " + err.Error())
		}
		return statusMsg("Saved " + path)
	}
}

// writeStoryContent renders every page for the current viewport width.
func (m *ConsoleUI) writeStoryContent() {
	width := m.storyViewport.Width - 2
	if width < 20 {
		width = 20
	}
	m.storyViewport.SetContent(renderStory(m.snapshot, width, m.statusLine()))
	m.storyViewport.GotoBottom()
}

func (m ConsoleUI) statusLine() string {
	switch m.snapshot.Phase {
	case engine.PhaseGeneratingPage:
		return loadingStyle.Render("Writing the next page...") + "\n" + m.renderProgressBar()
	case engine.PhaseGeneratingOptions:
		return m.spinner.View() + loadingStyle.Render(" Illustrating the choices...")
	}
	return ""
}

func renderStory(snap engine.Snapshot, width int, status string) string {
	var b strings.Builder
	s := snap.State

	b.WriteString(titleStyle.Render(strings.ToUpper(export.Title(s))))
	b.WriteString("\n")
	b.WriteString(promptStyle.Render(fmt.Sprintf("%s · %s · %s", s.Genre, s.AgeBracket, s.Locale)))
	b.WriteString("\n\n")

	for i, page := range s.Pages {
		b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
		b.WriteString("\n")
		b.WriteString(pageNumberStyle.Render(fmt.Sprintf("Page %d", i+1)))
		b.WriteString("\n\n")
		b.WriteString(wordwrap.String(page.Text, width))
		b.WriteString("\n\n")
		if page.ImageURL != "" {
			b.WriteString(imageStyle.Render("🖼  " + shortURL(page.ImageURL)))
			b.WriteString("\n\n")
		}
	}

	if page := s.CurrentPage(); page != nil && len(page.Options) > 0 {
		cards := make([]string, 0, len(page.Options))
		cardWidth := width/len(page.Options) - 4
		if cardWidth < 16 {
			cardWidth = width - 4
		}
		for i, opt := range page.Options {
			cards = append(cards, renderOptionCard(i+1, opt, cardWidth))
		}
		if cardWidth == width-4 {
			b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
		} else {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
		}
		b.WriteString("\n")
	}

	if status != "" {
		b.WriteString("\n" + status + "\n")
	}
	if snap.Err != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+snap.Err) + "\n")
	}
	return b.String()
}

func renderOptionCard(n int, opt story.StoryPageOption, width int) string {
	var b strings.Builder
	b.WriteString(optionKeyStyle.Render(fmt.Sprintf("[%d] ", n)))
	b.WriteString(wordwrap.String(opt.Summary, width-4))
	if opt.ImageURL != "" {
		b.WriteString("\n" + imageStyle.Render(shortURL(opt.ImageURL)))
	}
	return optionCardStyle.Width(width).Render(b.String())
}

// shortURL keeps long URLs, and especially data: URLs, from flooding the
// viewport.
func shortURL(url string) string {
	if strings.HasPrefix(url, "data:") {
		return "(inline image)"
	}
	if len(url) > 60 {
		return url[:57] + "..."
	}
	return url
}

func (m ConsoleUI) renderControlBar() string {
	if m.importing {
		return "Import from: " + m.pathInput.View()
	}
	bar := "1/2 choose · e export · i import · p pdf · r reset · g retry · q quit"
	if m.status != "" {
		bar = m.status + "  |  " + bar
	}
	return promptStyle.Render(bar)
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Unexported progress will be lost.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showOnboarding {
		modal := modalStyle.Width(70).Render(m.onboarding.view())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
	}

	return storyPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.storyViewport.View(),
		separatorStyle.Render(strings.Repeat("─", m.storyViewport.Width)),
		m.renderControlBar(),
	))
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.storyViewport.Width - 6
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
			bar.WriteString("▓")
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
