package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tuannm99/novarow/internal/alias/util"
	"github.com/tuannm99/novarow/internal/heap"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/workspace"
)

var errQuit = errors.New("quit")

const helpText = `meta commands:
  \alias [name dir]              list aliases, or bind name to a directory
  \load db.table [db.table...]   read tables into results named after them
  \save name db.table            append a result to a table (created if missing)
  \import name schema src        read delimited text from a file or http(s) url
                                 schema is "col:affinity[:size],..."
  \export name [file]            write a result as delimited text
  \sort name into spec           sort a result, e.g. \sort people sorted age desc,name
  \show name|index               print a result
  \list                          list results
  \drop name                     remove a result
  \history                       print history
  \help                          show help
  \q | quit | exit               quit

scripts:
  end with ';' (multiline is supported)`

type shell struct {
	ws   *workspace.Workspace
	hist *History
	out  io.Writer
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}

// meta runs one meta command. It returns errQuit when the shell should exit.
func (s *shell) meta(ctx context.Context, line string) error {
	line = compactOneLine(line)
	cmd, rest, _ := strings.Cut(line, " ")
	args := strings.Fields(rest)

	switch cmd {
	case `\q`, "quit", "exit":
		return errQuit
	case `\help`:
		fmt.Fprintln(s.out, helpText)
	case `\history`:
		s.hist.Print(s.out, 50)
	case `\alias`:
		return s.alias(args)
	case `\load`:
		if len(args) == 0 {
			return usage(`\load db.table [db.table...]`)
		}
		if err := s.ws.Load(ctx, args...); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "loaded %d tables\n", len(args))
	case `\save`:
		if len(args) != 2 {
			return usage(`\save name db.table`)
		}
		if err := s.ws.Save(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "saved %s to %s\n", args[0], args[1])
	case `\import`:
		return s.importText(ctx, args)
	case `\export`:
		return s.export(args)
	case `\sort`:
		parts := strings.SplitN(rest, " ", 3)
		if len(parts) != 3 {
			return usage(`\sort name into spec`)
		}
		res, err := s.ws.Sort(parts[0], parts[2], parts[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "sorted %d records into %s\n", len(res.Records), res.Name)
	case `\show`:
		if len(args) != 1 {
			return usage(`\show name|index`)
		}
		res, err := s.lookup(args[0])
		if err != nil {
			return err
		}
		printResult(s.out, res)
	case `\list`:
		return s.ws.Heap().Scan(func(i int, res *heap.Result) error {
			fmt.Fprintf(s.out, "%3d  %s  %d records  (%s)\n", i, res.Name, len(res.Records), res.Schema)
			return nil
		})
	case `\drop`:
		if len(args) != 1 {
			return usage(`\drop name`)
		}
		if _, err := s.ws.Deallocate(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

func (s *shell) alias(args []string) error {
	switch len(args) {
	case 0:
		for _, a := range s.ws.Catalog().Aliases() {
			dir, _ := s.ws.Catalog().Directory(a)
			fmt.Fprintf(s.out, "%s\t%s\n", a, dir)
		}
		return nil
	case 2:
		return s.ws.Catalog().Allocate(args[0], args[1])
	default:
		return usage(`\alias [name dir]`)
	}
}

func (s *shell) importText(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage(`\import name schema src`)
	}
	schema, err := record.ParseSchema(args[1])
	if err != nil {
		return err
	}

	var res *heap.Result
	src := args[2]
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		res, err = s.ws.ImportURL(ctx, args[0], schema, src)
	} else {
		var f *os.File
		f, err = os.Open(src)
		if err != nil {
			return err
		}
		defer util.CloseLogged(f, src)
		res, err = s.ws.Import(args[0], schema, f)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "imported %d records into %s\n", len(res.Records), res.Name)
	return nil
}

func (s *shell) export(args []string) error {
	switch len(args) {
	case 1:
		return s.ws.Export(args[0], s.out)
	case 2:
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		if err := s.ws.Export(args[0], f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return usage(`\export name [file]`)
	}
}

// lookup finds a result by name, falling back to its position.
func (s *shell) lookup(ref string) (*heap.Result, error) {
	if res, ok := s.ws.Result(ref); ok {
		return res, nil
	}
	if i, err := strconv.Atoi(ref); err == nil {
		if res, ok := s.ws.ResultAt(i); ok {
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", heap.ErrNotFound, ref)
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

// statementComplete checks for a terminating ';' outside single quotes.
func statementComplete(buf string) bool {
	inQuote := false
	escaped := false

	for _, r := range buf {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		if r == '\'' {
			inQuote = !inQuote
			continue
		}
		if r == ';' && !inQuote {
			return true
		}
	}
	return false
}

// run handles a meta command or executes a script and reports what it added.
func (s *shell) run(ctx context.Context, line string) error {
	if isMetaCommand(line) {
		return s.meta(ctx, line)
	}
	before := s.ws.Heap().Len()
	if err := s.ws.Execute(ctx, line); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "OK (%d results)\n", s.ws.Heap().Len()-before)
	return nil
}
