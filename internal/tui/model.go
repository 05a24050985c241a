package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ayurdiag/internal/diagnosis"
	"ayurdiag/internal/retriever"
)

// Engine is the TUI-facing subset of the diagnostic engine.
type Engine interface {
	Analyze(ctx context.Context, symptoms string, opts diagnosis.Options) (*diagnosis.Diagnosis, error)
	Chat(ctx context.Context, conv *diagnosis.Conversation, message string, opts diagnosis.Options) (string, error)
}

// Searcher looks up knowledge-base passages.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) ([]retriever.Result, error)
}

type mode int

const (
	modeChat mode = iota
	modeDiagnose
	modeSearch
)

func (m mode) String() string {
	switch m {
	case modeDiagnose:
		return "Diagnose"
	case modeSearch:
		return "Search"
	default:
		return "Chat"
	}
}

func (m mode) placeholder() string {
	switch m {
	case modeDiagnose:
		return "Describe your symptoms and press Enter"
	case modeSearch:
		return "Search the knowledge base and press Enter"
	default:
		return "Ask Dr. Priya anything about Ayurveda"
	}
}

type turn struct {
	user  bool
	text  string
	isErr bool
}

type chatReplyMsg struct {
	reply string
	err   error
}

type diagnosisMsg struct {
	d   *diagnosis.Diagnosis
	err error
}

type searchMsg struct {
	query   string
	results []retriever.Result
	err     error
}

// Model is the Bubble Tea model for the assistant.
type Model struct {
	ctx      context.Context
	engine   Engine
	search   Searcher
	conv     *diagnosis.Conversation
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	mode     mode
	useRAG   bool
	busy     bool
	ready    bool

	transcript []turn
	diag       *diagnosis.Diagnosis
	diagErr    error
	results    []retriever.Result
	cursor     int
	lastQuery  string
}

// New creates a TUI model. search may be nil, which disables search mode.
func New(ctx context.Context, engine Engine, search Searcher, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = modeChat.placeholder()
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		engine:   engine,
		search:   search,
		conv:     diagnosis.NewConversation(),
		input:    ti,
		viewport: vp,
		summary:  summary,
		useRAG:   true,
		status:   "Ready. tab: switch mode  ctrl+r: toggle RAG  ctrl+l: clear  ctrl+c: quit",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and async result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input box, spacer
		vh := max(3, msg.Height-reserved)
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil

	case chatReplyMsg:
		m.busy = false
		if msg.err != nil {
			m.transcript = append(m.transcript, turn{text: msg.err.Error(), isErr: true})
			m.status = "Error: " + msg.err.Error()
		} else {
			m.transcript = append(m.transcript, turn{text: msg.reply})
			m.status = "Response generated"
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case diagnosisMsg:
		m.busy = false
		m.diag, m.diagErr = msg.d, msg.err
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Analysis complete"
		}
		m.refresh()
		m.viewport.GotoTop()
		return m, nil

	case searchMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.status = fmt.Sprintf("%d results for %q", len(msg.results), msg.query)
			m.results = msg.results
			m.cursor = 0
			m.lastQuery = msg.query
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.mode = (m.mode + 1) % 3
			if m.mode == modeSearch && m.search == nil {
				m.mode = modeChat
			}
			m.input.Placeholder = m.mode.placeholder()
			m.status = m.mode.String() + " mode"
			m.refresh()
			return m, nil
		case "ctrl+r":
			m.useRAG = !m.useRAG
			m.status = "RAG " + onOff(m.useRAG)
			return m, nil
		case "ctrl+l":
			m.conv.Clear()
			m.transcript, m.diag, m.diagErr, m.results = nil, nil, nil, nil
			m.status = "History cleared"
			m.refresh()
			return m, nil
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			m.busy = true
			return m, m.submit(q)
		case "down":
			if m.mode == modeSearch && len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "up":
			if m.mode == modeSearch && len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.refresh()
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts the model call for the current mode.
func (m *Model) submit(q string) tea.Cmd {
	ctx, engine, conv := m.ctx, m.engine, m.conv
	opts := diagnosis.Options{UseRAG: m.useRAG}
	switch m.mode {
	case modeDiagnose:
		m.status = "Analyzing symptoms..."
		return func() tea.Msg {
			d, err := engine.Analyze(ctx, q, opts)
			return diagnosisMsg{d: d, err: err}
		}
	case modeSearch:
		m.status = "Searching..."
		search := m.search
		return func() tea.Msg {
			res, err := search.Retrieve(ctx, q, 10)
			return searchMsg{query: q, results: res, err: err}
		}
	default:
		m.transcript = append(m.transcript, turn{user: true, text: q})
		m.status = "Dr. Priya is typing..."
		m.refresh()
		m.viewport.GotoBottom()
		return func() tea.Msg {
			reply, err := engine.Chat(ctx, conv, q, opts)
			return chatReplyMsg{reply: reply, err: err}
		}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Ayurvedic Diagnostic Assistant") + "  " +
		modeStyle.Render(m.mode.String()) + "  " + dimStyle.Render("RAG "+onOff(m.useRAG))
	summary := dimStyle.Render(firstLine(m.summary))
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	width := max(20, m.viewport.Width-2)
	var content string
	switch m.mode {
	case modeDiagnose:
		switch {
		case m.diagErr != nil:
			content = renderError(m.diagErr, width)
		case m.diag != nil:
			content = renderDiagnosis(m.diag, width)
		default:
			content = dimStyle.Render("No diagnosis yet. Describe your symptoms below.")
		}
	case modeSearch:
		content = m.renderCurrentResult(width)
	default:
		content = m.renderTranscript(width)
	}
	m.viewport.SetContent(content)
}

func (m Model) renderTranscript(width int) string {
	if len(m.transcript) == 0 {
		return dimStyle.Render("Hello! I'm Dr. Priya. Ask me about Ayurveda, the doshas or your symptoms.")
	}
	var b strings.Builder
	for _, t := range m.transcript {
		switch {
		case t.user:
			b.WriteString(userStyle.Render("You: "))
		case t.isErr:
			b.WriteString(errorStyle.Render("Error: "))
		default:
			b.WriteString(assistantStyle.Render("Dr. Priya: "))
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(t.text))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderCurrentResult(width int) string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  %s  score=%.3f", m.cursor+1, len(m.results), r.Source, r.Score)
	body := highlightBestSentence(r.Content, m.lastQuery)
	return sectionStyle.Render(title) + "\n\n" + lipgloss.NewStyle().Width(width).Render(body)
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	modeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")).Padding(0, 1)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
