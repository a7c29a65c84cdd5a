// Package command holds the fixed command table and the input parser.
package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sahilm/fuzzy"
)

type Kind int

const (
	Help Kind = iota
	Search
	Exit
)

func (k Kind) String() string {
	switch k {
	case Help:
		return "help"
	case Search:
		return "search"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Command struct {
	Kind    Kind
	Binding key.Binding
}

// Usage returns the name and usage text shown by help.
func (c Command) Usage() (string, string) {
	h := c.Binding.Help()
	return h.Key, h.Desc
}

// Registry is the command table in declaration order. "-1" is kept as an
// exit alias for scripts written against the older tool.
var Registry = []Command{
	{Kind: Help, Binding: key.NewBinding(key.WithKeys("help"), key.WithHelp("help", "Usage: help"))},
	{Kind: Search, Binding: key.NewBinding(key.WithKeys("search"), key.WithHelp("search", "Usage: search <word1>,<word2> - Searches words in messages"))},
	{Kind: Exit, Binding: key.NewBinding(key.WithKeys("exit", "quit", "-1"), key.WithHelp("exit", "exits the application and provides the stats"))},
}

// Parsed is a recognized command with its raw argument tokens.
type Parsed struct {
	Kind Kind
	Args []string
}

type InvalidCommandError struct {
	Name       string
	Suggestion string
}

func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command %q", e.Name)
}

// token lets a raw command name be matched against key bindings.
type token string

func (t token) String() string { return string(t) }

// Parse trims the input, splits it on single spaces and looks the lower-cased
// first token up in the Registry. Arguments are returned untouched.
func Parse(raw string) (Parsed, error) {
	fields := strings.Split(strings.TrimSpace(raw), " ")
	name := strings.ToLower(fields[0])

	for _, c := range Registry {
		if key.Matches(token(name), c.Binding) {
			return Parsed{Kind: c.Kind, Args: fields[1:]}, nil
		}
	}
	return Parsed{}, &InvalidCommandError{Name: name, Suggestion: suggest(name)}
}

func suggest(name string) string {
	if name == "" {
		return ""
	}
	var keys []string
	for _, c := range Registry {
		keys = append(keys, c.Binding.Keys()...)
	}
	matches := fuzzy.Find(name, keys)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
