// Package tui implements the interactive ask screen: a question prompt, the
// cited answer sentences and a preview of the cited source passage.
package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/RussGuo/Legata/internal/answer"
	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/embedding"
)

// Port is the TUI-facing subset of the pipeline service.
type Port interface {
	Ask(ctx context.Context, question string, documentIDs []string, progress embedding.Progress) (domain.Answer, error)
	Source(ctx context.Context, c domain.Citation) (string, error)
}

type answerMsg struct {
	answer domain.Answer
	err    error
}

// Model is the Bubble Tea model for the ask screen.
type Model struct {
	ctx       context.Context
	service   Port
	documents []string
	names     map[string]string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	answer  domain.Answer
	source  string
	cursor  int
	status  string
	asking  bool
	ready   bool
	summary string
}

// New creates the ask screen scoped to documentIDs. names maps ids to display
// names and summary is shown under the title.
func New(ctx context.Context, service Port, documentIDs []string, names map[string]string, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:       ctx,
		service:   service,
		documents: documentIDs,
		names:     names,
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		summary:   summary,
		status:    fmt.Sprintf("%d document(s) in scope. Type a question.", len(documentIDs)),
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil

	case answerMsg:
		m.asking = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.answer = domain.Answer{}
		} else {
			m.answer = msg.answer
			m.cursor = 0
			m.status = fmt.Sprintf("%d sentence(s) for %q", len(m.cited()), msg.answer.Question)
			if answer.IsNoMatch(msg.answer.Sentences) {
				m.status = "No strong matches."
			}
		}
		m.loadSource()
		m.viewport.SetContent(m.renderCurrent())
		return m, nil

	case spinner.TickMsg:
		if !m.asking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.asking {
				return m, nil
			}
			m.asking = true
			m.status = fmt.Sprintf("Asking %q", q)
			return m, tea.Batch(m.ask(q), m.spinner.Tick)
		case "down":
			if n := len(m.answer.Sentences); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.loadSource()
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := len(m.answer.Sentences); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.loadSource()
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	ctx, svc, docs := m.ctx, m.service, m.documents
	return func() tea.Msg {
		a, err := svc.Ask(ctx, question, docs, nil)
		return answerMsg{answer: a, err: err}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Legata")
	summary := dimStyle.Render(m.summary)
	status := m.status
	if m.asking {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" +
		resultBoxStyle.Render(m.viewport.View()) + "\n" +
		queryBoxStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status)
}

// cited returns the answer sentences that carry citations.
func (m Model) cited() []domain.AnswerSentence {
	var out []domain.AnswerSentence
	for _, s := range m.answer.Sentences {
		if len(s.Citations) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (m *Model) loadSource() {
	m.source = ""
	if m.cursor >= len(m.answer.Sentences) {
		return
	}
	s := m.answer.Sentences[m.cursor]
	if len(s.Citations) == 0 {
		return
	}
	src, err := m.service.Source(m.ctx, s.Citations[0])
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.source = src
}

func (m Model) renderCurrent() string {
	if len(m.answer.Sentences) == 0 {
		return "No answer yet."
	}
	s := m.answer.Sentences[m.cursor]
	if len(s.Citations) == 0 {
		return s.Text
	}
	c := s.Citations[0]
	name := m.names[c.DocumentID]
	if name == "" {
		name = c.DocumentID
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Sentence %d/%d\n\n%s\n\n", m.cursor+1, len(m.answer.Sentences), s.Text)
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s [%d:%d]", name, c.Start, c.End)))
	b.WriteString("\n\n")
	b.WriteString(highlightBestSentence(m.source, s.Text))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	wordRe         = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence marks the source sentence sharing the most words
// with target.
func highlightBestSentence(source, target string) string {
	if strings.TrimSpace(source) == "" {
		return source
	}
	sentences := sentenceRe.FindAllString(source, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(source)}
	}
	want := toTokenSet(target)
	best, bestScore := 0, -1
	for i, s := range sentences {
		if score := overlapScore(want, s); score > bestScore {
			best, bestScore = i, score
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == best && bestScore > 0 {
			sent = highlightStyle.Render(sent)
		}
		sentences[i] = sent
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func overlapScore(want map[string]struct{}, sentence string) int {
	score := 0
	for t := range toTokenSet(sentence) {
		if _, ok := want[t]; ok {
			score++
		}
	}
	return score
}
