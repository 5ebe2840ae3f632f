package tui

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

// ChatPort is the TUI-facing subset of the chat bot.
type ChatPort interface {
	ProcessQuery(ctx context.Context, query string) (chat.Result, error)
	ResetChat() chat.Status
}

// StatsPort reports aggregated interaction statistics.
type StatsPort interface {
	GetAnalytics(ctx context.Context) analytics.Report
}

type Option func(*Model)

// WithAnalytics enables the ctrl+s statistics panel.
func WithAnalytics(s StatsPort) Option {
	return func(m *Model) { m.stats = s }
}

type entry struct {
	role domain.Role
	text string
}

type answerMsg struct {
	query  string
	result chat.Result
	err    error
}

// Model is the Bubble Tea model for the chat widget.
type Model struct {
	bot         ChatPort
	stats       StatsPort
	ctx         context.Context
	input       textinput.Model
	viewport    viewport.Model
	transcript  []entry
	docs        []domain.SearchResult
	lastQuery   string
	cursor      int
	showSources bool
	showStats   bool
	report      analytics.Report
	pending     bool
	status      string
	ready       bool
}

// New creates a chat model. ctx bounds every query sent to bot.
func New(ctx context.Context, bot ChatPort, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about shipping, returns, payments..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{
		bot:      bot,
		ctx:      ctx,
		input:    ti,
		viewport: vp,
		status:   "enter: send  ctrl+r: reset  tab: sources  ctrl+c: quit",
	}
	for _, o := range opts {
		o(&m)
	}
	if m.stats != nil {
		m.status = "enter: send  ctrl+r: reset  tab: sources  ctrl+s: stats  ctrl+c: quit"
	}
	return m
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.bot.ProcessQuery(m.ctx, q)
		return answerMsg{query: q, result: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.refresh()
			return m, nil
		}
		m.transcript = append(m.transcript, entry{role: domain.RoleModel, text: msg.result.Response})
		m.docs = msg.result.ContextDocs
		m.lastQuery = msg.query
		m.cursor = 0
		if len(m.docs) > 0 {
			m.status = fmt.Sprintf("Answered from %d source(s): %s", len(m.docs), strings.Join(domain.ContextSources(m.docs), ", "))
		} else {
			m.status = "Answered without knowledge base context"
		}
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			m.input.SetValue("")
			m.pending = true
			m.showSources = false
			m.showStats = false
			m.transcript = append(m.transcript, entry{role: domain.RoleUser, text: q})
			m.status = "Thinking..."
			m.refresh()
			return m, m.ask(q)
		case "ctrl+r":
			if m.pending {
				return m, nil
			}
			st := m.bot.ResetChat()
			m.transcript = nil
			m.docs = nil
			m.showSources = false
			m.showStats = false
			m.status = st.Status
			m.refresh()
			return m, nil
		case "tab":
			if len(m.docs) > 0 {
				m.showSources = !m.showSources
				m.showStats = false
				m.refresh()
			}
			return m, nil
		case "ctrl+s":
			if m.stats == nil {
				return m, nil
			}
			m.showStats = !m.showStats
			m.showSources = false
			if m.showStats {
				m.report = m.stats.GetAnalytics(m.ctx)
			}
			m.refresh()
			return m, nil
		case "down":
			if m.showSources && len(m.docs) > 0 {
				m.cursor = (m.cursor + 1) % len(m.docs)
				m.refresh()
				return m, nil
			}
		case "up":
			if m.showSources && len(m.docs) > 0 {
				m.cursor = (m.cursor - 1 + len(m.docs)) % len(m.docs)
				m.refresh()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Customer Support")
	body := transcriptBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	if m.showStats {
		m.viewport.SetContent(renderReport(m.report))
		m.viewport.GotoTop()
		return
	}
	if m.showSources {
		m.viewport.SetContent(m.renderSource())
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "How can I help you today?"
	}
	width := max(10, m.viewport.Width-4)
	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if e.role == domain.RoleUser {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(botStyle.Render("Assistant: "))
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(e.text))
	}
	return b.String()
}

func (m Model) renderSource() string {
	r := m.docs[m.cursor]
	title := fmt.Sprintf("Source %d/%d  %s  score=%.3f", m.cursor+1, len(m.docs), r.Document.Source, r.Score)
	body := highlightBestSentence(r.Document.Content, m.lastQuery)
	return title + "\n\n" + lipgloss.NewStyle().Width(max(10, m.viewport.Width-4)).Render(body)
}

func renderReport(r analytics.Report) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Analytics"))
	b.WriteString("\n\n")
	if r.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n\n", r.Error)
	}
	fmt.Fprintf(&b, "Total interactions: %d\n", r.TotalInteractions)
	fmt.Fprintf(&b, "With context: %d  Without context: %d\n", r.ContextUsage.WithContext, r.ContextUsage.WithoutContext)
	if len(r.CategoryDistribution) == 0 {
		return b.String()
	}
	b.WriteString("\nCategories:\n")
	cats := make([]string, 0, len(r.CategoryDistribution))
	for c := range r.CategoryDistribution {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(&b, "  %-10s %d\n", c, r.CategoryDistribution[domain.Category(c)])
	}
	return b.String()
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	wordRe             = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
	sentenceRe         = regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|$)`)
)

// highlightBestSentence emphasizes the sentence sharing the most words with query.
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
		return strings.Join(trimAll(sentences), " ")
	}
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := tokenOverlapScore(qTokens, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	out := trimAll(sentences)
	out[bestIdx] = highlightStyle.Render(out[bestIdx])
	return strings.Join(out, " ")
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	seen := make(map[string]struct{})
	for _, t := range wordRe.FindAllString(strings.ToLower(sentence), -1) {
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
