package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

type fakeBot struct {
	result chat.Result
	err    error
	resets int
}

func (f *fakeBot) ProcessQuery(context.Context, string) (chat.Result, error) { return f.result, f.err }

func (f *fakeBot) ResetChat() chat.Status {
	f.resets++
	return chat.Status{Status: chat.ResetMessage}
}

func sized(t *testing.T, bot ChatPort) Model {
	t.Helper()
	m, _ := New(context.Background(), bot).Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(Model)
}

func send(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestEnterSendsQueryAndRendersAnswer(t *testing.T) {
	bot := &fakeBot{result: chat.Result{
		Response: "It arrives in 3-5 days.",
		ContextDocs: []domain.SearchResult{
			{Document: domain.Document{Content: "Shipping takes 3-5 days.", Source: "FAQ"}, Score: 0.9},
		},
	}}
	m := sized(t, bot)

	m, cmd := send(t, m, "when will it arrive?")
	require.NotNil(t, cmd)
	assert.True(t, m.pending)
	assert.Equal(t, "", m.input.Value())

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.pending)
	require.Len(t, m.transcript, 2)
	assert.Equal(t, domain.RoleModel, m.transcript[1].role)
	assert.Contains(t, m.status, "FAQ")
	assert.Contains(t, m.View(), "It arrives in 3-5 days.")
}

func TestBlankInputIsIgnored(t *testing.T) {
	m, cmd := send(t, sized(t, &fakeBot{}), "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.transcript)
}

func TestErrorShowsInStatus(t *testing.T) {
	m := sized(t, &fakeBot{err: errors.New("generation failed: quota")})
	m, cmd := send(t, m, "hi")
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Contains(t, m.status, "quota")
	assert.Len(t, m.transcript, 1)
}

func TestResetClearsTranscript(t *testing.T) {
	bot := &fakeBot{result: chat.Result{Response: "ok"}}
	m := sized(t, bot)
	m, cmd := send(t, m, "hi")
	next, _ := m.Update(cmd())
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = next.(Model)
	assert.Empty(t, m.transcript)
	assert.Equal(t, chat.ResetMessage, m.status)
	assert.Equal(t, 1, bot.resets)
}

type fakeStats struct{ calls int }

func (f *fakeStats) GetAnalytics(context.Context) analytics.Report {
	f.calls++
	return analytics.Report{
		TotalInteractions:    3,
		CategoryDistribution: map[domain.Category]int{domain.CategoryShipping: 2, domain.CategoryOther: 1},
		ContextUsage:         analytics.ContextUsage{WithContext: 2, WithoutContext: 1},
	}
}

func TestStatsPanelToggles(t *testing.T) {
	stats := &fakeStats{}
	m, _ := New(context.Background(), &fakeBot{}, WithAnalytics(stats)).Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	model := next.(Model)
	assert.True(t, model.showStats)
	assert.Equal(t, 1, stats.calls)
	assert.Contains(t, model.View(), "Total interactions: 3")
	assert.Contains(t, model.View(), "shipping")

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, next.(Model).showStats)
}

func TestStatsKeyWithoutAnalyticsIsNoop(t *testing.T) {
	m := sized(t, &fakeBot{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.False(t, next.(Model).showStats)
}

func TestHighlightBestSentence(t *testing.T) {
	out := highlightBestSentence("We ship daily. Returns take 30 days.", "how do returns work")
	assert.Contains(t, out, "We ship daily.")
	assert.Contains(t, out, "Returns take 30 days.")
	assert.Equal(t, "A. B.", highlightBestSentence("A.  B.", ""))
}
