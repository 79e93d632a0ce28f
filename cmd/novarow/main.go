package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tuannm99/novarow/internal/config"
	"github.com/tuannm99/novarow/internal/fetch"
	"github.com/tuannm99/novarow/internal/sql/executor"
	"github.com/tuannm99/novarow/internal/workspace"
)

const prompt = "novarow> "

func newWorkspace(cfg *config.NovaRowConfig) (*workspace.Workspace, error) {
	delim, err := cfg.Delimiter()
	if err != nil {
		return nil, err
	}
	ws := workspace.New(
		workspace.WithExecutor(executor.New()),
		workspace.WithSortFactory(cfg.SortFactory()),
		workspace.WithTextFormat(delim, cfg.Text.NullToken),
		workspace.WithFetcher(&fetch.Client{HTTP: &http.Client{Timeout: cfg.Fetch.Timeout}}),
	)
	for alias, dir := range cfg.Aliases {
		if err := ws.Catalog().Allocate(alias, dir); err != nil {
			return nil, err
		}
	}
	return ws, nil
}

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML config file")
		histPath = flag.String("history", defaultHistoryPath(), "history file path")
		histMax  = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShot  = flag.String("c", "", "run one meta command or script and exit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	lvl, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	ws, err := newWorkspace(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "workspace: %v\n", err)
		os.Exit(1)
	}

	h := NewHistory(*histPath)
	if err := h.Load(*histMax); err != nil {
		slog.Warn("history: load failed", "path", *histPath, "err", err)
	}
	sh := &shell{ws: ws, hist: h, out: os.Stdout}
	ctx := context.Background()

	if line := strings.TrimSpace(*oneShot); line != "" {
		if err := sh.run(ctx, line); err != nil && !errors.Is(err, errQuit) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.Lines() {
		_ = rl.SaveHistory(line)
	}

	fmt.Printf("%s ready, type \\help for help\n", cfg.AppName)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl+C clears the pending script
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(prompt)
			}
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && isMetaCommand(line) {
			_ = h.Append(line)
			if err := sh.meta(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return
				}
				fmt.Printf("error: %v\n", err)
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt("...> ")
			continue
		}

		script := buf.String()
		buf.Reset()
		rl.SetPrompt(prompt)

		_ = h.Append(script)
		_ = rl.SaveHistory(compactOneLine(script))

		if err := sh.run(ctx, script); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
