package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/coregx/ecmare"
)

// session holds the pattern being tried interactively. A line of the form
// /pattern/flags replaces it; any other line is searched.
type session struct {
	opts options
	re   *ecmare.Regex
}

func repl(o options, stderr io.Writer) error {
	rl, err := readline.New("/> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	s := &session{opts: o}
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) > 0 {
					continue
				}
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			fmt.Fprintln(stderr, err)
			continue
		}
		s.eval(line, rl.Stdout(), stderr)
		if s.re != nil {
			rl.SetPrompt(fmt.Sprintf("/%s/> ", s.re))
		}
	}
}

func (s *session) eval(line string, stdout, stderr io.Writer) {
	if pattern, flags, ok := parseLiteral(line); ok {
		f, err := ecmare.ParseFlags(flags)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		re, err := ecmare.CompileWithConfig(pattern, s.opts.flags()|f, s.opts.config())
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		s.re = re
		fmt.Fprintf(stdout, "strategy: %s, groups: %d\n", re.Strategy(), re.NumSubexp())
		return
	}
	if s.re == nil {
		fmt.Fprintln(stderr, "no pattern; enter one as /pattern/flags")
		return
	}
	s.describe(line, stdout, stderr)
}

func (s *session) describe(subject string, stdout, stderr io.Writer) {
	m, err := s.re.Search([]byte(subject), 0, 0, 0)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return
	}
	if m == nil {
		fmt.Fprintln(stdout, "no match")
		return
	}
	names := s.re.SubexpNames()
	for i := 0; 2*i+1 < len(m); i++ {
		label := fmt.Sprint(i)
		if names[i] != "" {
			label += " <" + names[i] + ">"
		}
		if m[2*i] < 0 {
			fmt.Fprintf(stdout, "%s: undefined\n", label)
			continue
		}
		fmt.Fprintf(stdout, "%s: [%d,%d) %q\n", label, m[2*i], m[2*i+1], subject[m[2*i]:m[2*i+1]])
	}
}

// parseLiteral splits /pattern/flags. The last slash ends the pattern.
func parseLiteral(line string) (pattern, flags string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	end := strings.LastIndexByte(line, '/')
	if end == 0 {
		return "", "", false
	}
	return line[1:end], line[end+1:], true
}
