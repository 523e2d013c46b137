// Command ecmare searches files for lines matching an ECMAScript regular
// expression.
//
// Usage:
//
//	ecmare [flags] PATTERN [FILE...]
//	ecmare -repl [flags]
//
// With no files, standard input is searched.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coregx/ecmare"
)

type options struct {
	ignoreCase bool
	multiline  bool
	dotAll     bool
	onlyMatch  bool
	count      bool
	dump       bool
	repl       bool
	budget     int64
}

func (o options) flags() ecmare.Flags {
	var f ecmare.Flags
	if o.ignoreCase {
		f |= ecmare.IgnoreCase
	}
	if o.multiline {
		f |= ecmare.Multiline
	}
	if o.dotAll {
		f |= ecmare.DotAll
	}
	return f
}

func (o options) config() ecmare.Config {
	config := ecmare.DefaultConfig()
	if o.budget > 0 {
		config.MaxFailures = o.budget
	}
	return config
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns 0 when a line matched, 1 when none did and 2 on error.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var o options
	fs := flag.NewFlagSet("ecmare", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.ignoreCase, "i", false, "case-insensitive matching")
	fs.BoolVar(&o.multiline, "m", false, "^ and $ match at line breaks")
	fs.BoolVar(&o.dotAll, "s", false, ". matches line terminators")
	fs.BoolVar(&o.onlyMatch, "o", false, "print only the matched parts of lines")
	fs.BoolVar(&o.count, "c", false, "print only a count of matching lines")
	fs.BoolVar(&o.dump, "dump", false, "print the compiled program and exit")
	fs.BoolVar(&o.repl, "repl", false, "start an interactive session")
	fs.Int64Var(&o.budget, "budget", 0, "backtracking failure budget per search")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if o.repl {
		if err := repl(o, stderr); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 0
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(stderr, "usage: ecmare [flags] PATTERN [FILE...]")
		return 2
	}
	re, err := ecmare.CompileWithConfig(fs.Arg(0), o.flags(), o.config())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if o.dump {
		fmt.Fprintf(stdout, "strategy: %s\n%s", re.Strategy(), re.Dump())
		return 0
	}

	files := fs.Args()[1:]
	multi := len(files) > 1
	matched, failed := false, false
	if len(files) == 0 {
		ok, err := grep(re, o, "", stdin, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		matched = ok
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			failed = true
			continue
		}
		prefix := ""
		if multi {
			prefix = name + ":"
		}
		ok, err := grep(re, o, prefix, f, stdout)
		f.Close()
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
			failed = true
		}
		matched = matched || ok
	}

	switch {
	case failed:
		return 2
	case matched:
		return 0
	default:
		return 1
	}
}

func grep(re *ecmare.Regex, o options, prefix string, r io.Reader, w io.Writer) (bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	out := bufio.NewWriter(w)
	defer out.Flush()

	n := 0
	for sc.Scan() {
		line := sc.Bytes()
		loc, err := re.Search(line, 0, 0, 0)
		if err != nil {
			if errors.Is(err, ecmare.ErrComplexity) || errors.Is(err, ecmare.ErrStack) {
				return n > 0, fmt.Errorf("line %q: %w", truncate(line), err)
			}
			return n > 0, err
		}
		if loc == nil {
			continue
		}
		n++
		switch {
		case o.count:
		case o.onlyMatch:
			for _, m := range re.FindAll(line, -1) {
				if len(m) > 0 {
					fmt.Fprintf(out, "%s%s\n", prefix, m)
				}
			}
		default:
			fmt.Fprintf(out, "%s%s\n", prefix, line)
		}
	}
	if err := sc.Err(); err != nil {
		return n > 0, err
	}
	if o.count {
		fmt.Fprintf(out, "%s%d\n", prefix, n)
	}
	return n > 0, nil
}

func truncate(b []byte) string {
	if len(b) > 40 {
		return string(b[:40]) + "..."
	}
	return string(b)
}
