package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	youtubesummarizer "video-summarizer/agents/youtube-summarizer"
	"video-summarizer/shared/config"
	"video-summarizer/shared/logging"
	"video-summarizer/shared/monitoring"
	"video-summarizer/shared/scheduler"

	"go.uber.org/zap"
)

const usage = `Usage:
  summarizer analyze [-q question]... [-hint text] [-export] [-email] <url>
  summarizer chat <url>
  summarizer status
  summarizer serve`

var errUsage = errors.New("missing video URL")

// questions collects repeated -q flags.
type questions []string

func (q *questions) String() string     { return strings.Join(*q, "; ") }
func (q *questions) Set(v string) error { *q = append(*q, v); return nil }

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	// Create context that responds to signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	monitor := monitoring.NewMonitor(logger)
	agent := youtubesummarizer.NewSummarizer(cfg, monitor, logger)

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "serve" {
		s := scheduler.New(cfg, agent, monitor, logger)
		fmt.Println("Starting backend health watch...")
		if err := s.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal("scheduler failed", zap.Error(err))
		}
		return
	}

	if err := agent.Initialize(); err != nil {
		logger.Fatal("failed to initialize agent", zap.Error(err))
	}

	switch cmd {
	case "analyze":
		err = runAnalyze(ctx, agent, args)
	case "chat":
		err = runChat(ctx, agent, args)
	case "status":
		fmt.Print(renderStatus(agent.Status(ctx)))
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(agent.UserMessage(err)))
		os.Exit(1)
	}
}

func runAnalyze(ctx context.Context, agent *youtubesummarizer.Summarizer, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	var qs questions
	fs.Var(&qs, "q", "follow-up question (repeatable)")
	hint := fs.String("hint", "", "extra instructions for the summarizer")
	export := fs.Bool("export", false, "write a text report to the output directory")
	sendEmail := fs.Bool("email", false, "mail the text report (implies -export)")
	_ = fs.Parse(args)

	// Flags may also follow the URL.
	url := fs.Arg(0)
	if fs.NArg() > 1 {
		_ = fs.Parse(fs.Args()[1:])
	}
	if url == "" {
		return errUsage
	}

	result, err := agent.Analyze(ctx, url, *hint)
	if err != nil {
		return err
	}
	fmt.Print(renderAnalysis(result.Analysis, result.Warnings))

	for _, q := range qs {
		answer, err := agent.Ask(ctx, result.Analysis.ContextID, q)
		if err != nil {
			fmt.Println(errorStyle.Render(agent.UserMessage(err)))
			continue
		}
		fmt.Println(headingStyle.Render("Q: " + q))
		fmt.Println(answer)
		fmt.Println()
	}

	if *export || *sendEmail {
		exported, err := agent.Export(result.Analysis.ContextID, *sendEmail)
		if exported != nil && exported.Path != "" {
			fmt.Println(statusStyle.Render("Report saved to " + exported.Path))
		}
		if err != nil {
			return err
		}
		if exported.Emailed {
			fmt.Println(statusStyle.Render("Report emailed"))
		}
	}
	return nil
}

func runChat(ctx context.Context, agent *youtubesummarizer.Summarizer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	result, err := agent.Analyze(ctx, args[0], "")
	if err != nil {
		return err
	}
	fmt.Print(renderAnalysis(result.Analysis, result.Warnings))
	fmt.Println(infoStyle.Render("Ask a question, 'export' to save the report, or 'quit' to leave."))

	id := result.Analysis.ContextID
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "export":
			exported, err := agent.Export(id, false)
			if err != nil {
				fmt.Println(errorStyle.Render(agent.UserMessage(err)))
				continue
			}
			fmt.Println(statusStyle.Render("Report saved to " + exported.Path))
			continue
		}

		answer, err := agent.Ask(ctx, id, line)
		if err != nil {
			fmt.Println(errorStyle.Render(agent.UserMessage(err)))
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
}
