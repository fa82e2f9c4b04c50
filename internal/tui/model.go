package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockfinder/internal/domain"
)

// Runner is the TUI-facing side of the pipelines.
type Runner interface {
	RunArticle(ctx context.Context, url string) domain.ArticleResult
	RunQuery(ctx context.Context, query string) domain.QueryResult
}

const (
	urlField = iota
	queryField
	fieldCount
)

type articleDoneMsg struct{ res domain.ArticleResult }

type queryDoneMsg struct{ res domain.QueryResult }

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	runner Runner

	inputs   [fieldCount]textinput.Model
	focus    int
	viewport viewport.Model
	width    int
	ready    bool

	article      *domain.ArticleResult
	answer       *domain.QueryResult
	articleBusy  bool
	questionBusy bool
	status       string
}

// New creates a new TUI model instance. Pending pipelines are cancelled when the user quits.
func New(ctx context.Context, runner Runner) Model {
	ctx, cancel := context.WithCancel(ctx)

	url := textinput.New()
	url.Prompt = "URL   > "
	url.Placeholder = "Article URL (optional)"
	url.CharLimit = 0
	url.Focus()

	query := textinput.New()
	query.Prompt = "Query > "
	query.Placeholder = "Ask about stocks, e.g. companies that manufacture computer chips"
	query.CharLimit = 0

	return Model{
		ctx:      ctx,
		cancel:   cancel,
		runner:   runner,
		inputs:   [fieldCount]textinput.Model{url, query},
		viewport: viewport.New(0, 0),
		status:   "Enter an article URL, a query, or both.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and pipeline events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, rh := resultBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 2*(1+ih) + 1 // header, two inputs, status
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		for i := range m.inputs {
			m.inputs[i].Width = max(10, msg.Width-12)
		}
		m.refresh()
		return m, nil

	case articleDoneMsg:
		res := msg.res
		m.article = &res
		m.articleBusy = false
		m.updateStatus()
		m.refresh()
		return m, nil

	case queryDoneMsg:
		res := msg.res
		m.answer = &res
		m.questionBusy = false
		m.updateStatus()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancel()
			return m, tea.Quit
		case tea.KeyTab:
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case tea.KeyShiftTab:
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// submit starts one command per non-empty input. Each command reports through its own message.
func (m *Model) submit() tea.Cmd {
	url := strings.TrimSpace(m.inputs[urlField].Value())
	query := strings.TrimSpace(m.inputs[queryField].Value())

	var cmds []tea.Cmd
	if url != "" && !m.articleBusy {
		m.articleBusy = true
		m.article = nil
		ctx, runner := m.ctx, m.runner
		cmds = append(cmds, func() tea.Msg {
			return articleDoneMsg{res: runner.RunArticle(ctx, url)}
		})
	}
	if query != "" && !m.questionBusy {
		m.questionBusy = true
		m.answer = nil
		ctx, runner := m.ctx, m.runner
		cmds = append(cmds, func() tea.Msg {
			return queryDoneMsg{res: runner.RunQuery(ctx, query)}
		})
	}
	if len(cmds) == 0 {
		if url == "" && query == "" {
			m.status = "Nothing to do: enter an article URL or a query."
		}
		return nil
	}
	m.updateStatus()
	m.refresh()
	return tea.Batch(cmds...)
}

func (m *Model) updateStatus() {
	switch {
	case m.articleBusy && m.questionBusy:
		m.status = "Analyzing article and answering query..."
	case m.articleBusy:
		m.status = "Analyzing article..."
	case m.questionBusy:
		m.status = "Answering query..."
	default:
		m.status = "Done. Up/Down to scroll, Esc to quit."
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderResults())
}

// View renders the TUI layout and current results.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Stock Ticker Finder")
	url := inputBoxStyle.Render(m.inputs[urlField].View())
	query := inputBoxStyle.Render(m.inputs[queryField].View())
	results := resultBoxStyle.Render(m.viewport.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + url + "\n" + query + "\n" + results + "\n" + status
}

func (m Model) renderResults() string {
	var sections []string
	if m.articleBusy {
		sections = append(sections, mutedStyle.Render("Fetching the article..."))
	} else if m.article != nil {
		sections = append(sections, renderArticle(*m.article, m.width))
	}
	if m.questionBusy {
		sections = append(sections, mutedStyle.Render("Searching stock descriptions..."))
	} else if m.answer != nil {
		sections = append(sections, renderAnswer(*m.answer))
	}
	if len(sections) == 0 {
		return mutedStyle.Render("No results yet.")
	}
	return strings.Join(sections, "\n\n")
}

func renderArticle(res domain.ArticleResult, width int) string {
	var b strings.Builder
	if res.Article.Excerpt != "" {
		b.WriteString(titleStyle.Render("Article Excerpt"))
		b.WriteString("\n")
		b.WriteString(res.Article.Excerpt)
		b.WriteString("\n\n")
	}
	if res.Err != nil && len(res.Tickers) == 0 {
		b.WriteString(errorStyle.Render("Error: " + res.Err.Error()))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Stock Tickers in the Article"))
	b.WriteString("\n")
	if len(res.Tickers) == 0 {
		b.WriteString("No relevant stock tickers found in the article.")
		return b.String()
	}
	for _, t := range res.Tickers {
		fmt.Fprintf(&b, "Ticker: %s\nExplanation: %s\n", t.Ticker, t.Explanation)
	}
	b.WriteString("\n")
	b.WriteString(renderChart(res.TickerSymbols(), res.Prices, width))
	if res.Err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + res.Err.Error()))
	}
	return b.String()
}

func renderAnswer(res domain.QueryResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Relevant Stock Tickers for Your Query:"))
	b.WriteString("\n")
	if res.Err != nil {
		b.WriteString(errorStyle.Render("Error: " + res.Err.Error()))
		return b.String()
	}
	b.WriteString(res.Answer)
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
