package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altin/linesearch/internal/session"
	"github.com/altin/linesearch/internal/ui"
)

// App is an inline prompt. Command output is printed above it with
// tea.Println so it stays in the terminal scrollback.
type App struct {
	session *session.Session
	styles  ui.Styles
	input   textinput.Model
	prompt  string
	width   int
	done    bool
}

func NewApp(s *session.Session, styles ui.Styles, prompt string) App {
	ti := textinput.New()
	ti.Prompt = styles.Prompt.Render(prompt)
	ti.Placeholder = "search <word1>,<word2>"
	ti.CharLimit = 0 // no limit
	ti.Focus()

	return App{
		session: s,
		styles:  styles,
		input:   ti,
		prompt:  prompt,
	}
}

// Done reports whether the session summary has been printed.
func (a App) Done() bool { return a.done }

func (a App) Init() tea.Cmd {
	var b bytes.Buffer
	a.session.Welcome(&b)
	return tea.Batch(textinput.Blink, printCmd(b.String()))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.done {
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.input.Width = msg.Width - len(a.prompt) - 1
		return a, nil

	case ui.InterruptMsg:
		return a.interrupt()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.Interrupt):
			return a.interrupt()
		case key.Matches(msg, ui.Keys.Clear):
			a.input.Reset()
			return a, nil
		case key.Matches(msg, ui.Keys.Submit):
			return a.submit()
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit runs the command synchronously, so no new input is accepted until
// the search has finished.
func (a App) submit() (tea.Model, tea.Cmd) {
	line := a.input.Value()
	a.input.Reset()

	var b bytes.Buffer
	ended := a.session.Execute(&b, line)

	cmds := []tea.Cmd{tea.Println(a.prompt + line), printCmd(b.String())}
	if ended {
		a.done = true
		cmds = append(cmds, tea.Quit)
	}
	return a, tea.Sequence(cmds...)
}

func (a App) interrupt() (tea.Model, tea.Cmd) {
	var b bytes.Buffer
	a.session.Interrupt(&b)
	a.done = true
	return a, tea.Sequence(printCmd(b.String()), tea.Quit)
}

func (a App) View() string {
	if a.done {
		return ""
	}
	st := a.session.Stats()
	header := RenderHeader(a.styles, a.session.CorpusLen(), st.TotalMatches(), a.width)
	status := fmt.Sprintf("%d searches", st.Searches())
	hints := fmt.Sprintf("%s run  %s clear  %s exit",
		ui.Keys.Submit.Help().Key, ui.Keys.Clear.Help().Key, ui.Keys.Interrupt.Help().Key)
	return header + "\n" + a.input.View() + "\n" + RenderStatusBar(a.styles, status, hints, a.width)
}

// printCmd drops the final newline of captured output, since tea.Println
// adds its own. It returns nil for empty output.
func printCmd(out string) tea.Cmd {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return tea.Println(out)
}
