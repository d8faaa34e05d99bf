package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/petasbytes/book-tutor/book"
	"github.com/petasbytes/book-tutor/internal/agent"
	"github.com/petasbytes/book-tutor/internal/config"
	"github.com/petasbytes/book-tutor/internal/logging"
	"github.com/petasbytes/book-tutor/internal/provider"
	"github.com/petasbytes/book-tutor/internal/store"
	"github.com/petasbytes/book-tutor/memory"
	"github.com/petasbytes/book-tutor/tools"
)

func main() {
	studentID := flag.Int64("student", 1, "student identifier")
	bookID := flag.Int64("book", 1, "book identifier to tutor from")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// Optional .env; real env always wins.
	_ = godotenv.Load()

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *studentID, *bookID); err != nil {
		logger.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger, studentID, bookID int64) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	p := provider.NewAnthropic(provider.NewClient(), cfg.Model)

	static, err := book.LoadFile(cfg.BookPath)
	if err != nil {
		return err
	}
	// Chapters without a baked-in plan get one generated on first lookup.
	lib := book.NewPlanningLibrary(static, p)
	info, err := lib.Info(ctx, bookID)
	if err != nil {
		return err
	}

	reg := tools.NewRegistry()
	if err := reg.Register(tools.NewGetChapter(bookID, lib)); err != nil {
		return err
	}
	if err := reg.Register(tools.NewBookJump(bookID, lib)); err != nil {
		return err
	}

	mem, err := memory.Load(ctx, st, memory.Identity{StudentID: studentID, BookID: bookID}, memory.Options{
		Budget:        cfg.TokenBudget,
		AutoSaveEvery: cfg.AutoSaveEvery,
		SystemPrompt:  systemPrompt(info),
	})
	if err != nil {
		return err
	}

	orch := agent.New(p, reg, mem, agent.Options{
		MaxToolRounds: cfg.MaxToolRounds,
		Logger:        logger,
	})

	fmt.Printf("Studying %q. Ctrl-C to quit.\n", info.Title)

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return mem.Flush(context.Background())
		case line, ok = <-inputCh:
			if !ok {
				return mem.Flush(context.Background())
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		events := make(chan agent.Event, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			render(events)
		}()

		if err := orch.Input(ctx, line, events); err != nil {
			close(events)
			<-done
			if ctx.Err() != nil {
				return mem.Flush(context.Background())
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		close(events)
		<-done
	}
}

// render prints one turn's events until the channel closes.
func render(events <-chan agent.Event) {
	speaking := false
	for e := range events {
		switch e.Kind {
		case agent.EventContent:
			if !speaking {
				fmt.Print("\u001b[93mTutor\u001b[0m: ")
				speaking = true
			}
			fmt.Print(e.Text)
		case agent.EventRefusal:
			fmt.Printf("\u001b[91mRefused\u001b[0m: %s", e.Text)
		case agent.EventToolCall:
			if speaking {
				fmt.Println()
				speaking = false
			}
			fmt.Printf("\u001b[92mtool\u001b[0m: %s(%s)\n", e.Call.Name, e.Call.Arguments)
		case agent.EventToolResult:
			if e.Result.IsError {
				fmt.Printf("\u001b[91mtool error\u001b[0m: %s\n", e.Result.Content)
			}
		}
	}
	if speaking {
		fmt.Println()
	}
}

func systemPrompt(info *book.Info) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a patient tutor teaching the book %q", info.Title)
	if info.Author != "" {
		fmt.Fprintf(&b, " by %s", info.Author)
	}
	b.WriteString(".\n")
	b.WriteString("Teach one chapter at a time, in order, checking understanding before moving on.\n")
	b.WriteString("Before teaching a chapter, call GetChapterContent to fetch it; never invent chapter content.\n")
	b.WriteString("When the student asks to move to a different chapter or section, call BookJump so their reader follows along.\n")
	b.WriteString("Chapter numbers are hierarchical strings like '1.2.3.'.")
	return b.String()
}
