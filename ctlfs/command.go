package ctlfs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadCommand is returned for ctl writes that do not parse.
var ErrBadCommand = errors.New("bad ctl command")

// Verb names a ctl command.
type Verb int

const (
	Mark Verb = iota
	NoMark
	Dark
	Light
	Focus
	Unfocus
	Goto
)

var verbs = map[string]Verb{
	"mark":    Mark,
	"nomark":  NoMark,
	"dark":    Dark,
	"light":   Light,
	"focus":   Focus,
	"unfocus": Unfocus,
	"goto":    Goto,
}

func (v Verb) String() string {
	for s, w := range verbs {
		if w == v {
			return s
		}
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// Command is one parsed line written to ctl. Line is set for Mark and
// Goto.
type Command struct {
	Verb Verb
	Line int
}

// ParseCommand parses a single ctl line such as "mark 12".
func ParseCommand(s string) (Command, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return Command{}, fmt.Errorf("%w: empty", ErrBadCommand)
	}
	v, ok := verbs[f[0]]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrBadCommand, f[0])
	}
	c := Command{Verb: v}
	switch v {
	case Mark, Goto:
		if len(f) != 2 {
			return Command{}, fmt.Errorf("%w: %s wants a line number", ErrBadCommand, f[0])
		}
		n, err := strconv.Atoi(f[1])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("%w: bad line %q", ErrBadCommand, f[1])
		}
		c.Line = n
	default:
		if len(f) != 1 {
			return Command{}, fmt.Errorf("%w: %s takes no argument", ErrBadCommand, f[0])
		}
	}
	return c, nil
}

// ParseCommands parses a ctl write. Blank lines are skipped. Nothing is
// returned unless every line parses.
func ParseCommands(data string) ([]Command, error) {
	var cmds []Command
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		c, err := ParseCommand(line)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// State is what the read-only files report.
type State struct {
	Mark    int // 0 when no line is marked
	Lines   int
	Dark    bool
	Focused bool
}

func (s State) mark() string {
	if s.Mark < 1 {
		return ""
	}
	return strconv.Itoa(s.Mark) + "\n"
}

func (s State) lines() string {
	return strconv.Itoa(s.Lines) + "\n"
}

func (s State) mode() string {
	m := "light"
	if s.Dark {
		m = "dark"
	}
	f := "unfocused"
	if s.Focused {
		f = "focused"
	}
	return m + " " + f + "\n"
}

// Controller carries out commands on a gutter. The server calls it from
// its own goroutine.
type Controller interface {
	Do(c Command) error
	State() State
}
