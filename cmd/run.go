// File: cmd/run.go
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/concierge-cli/internal/actions"
	"github.com/xkilldash9x/concierge-cli/internal/browser"
	"github.com/xkilldash9x/concierge-cli/internal/chain"
	"github.com/xkilldash9x/concierge-cli/internal/driver"
	"github.com/xkilldash9x/concierge-cli/internal/humanoid"
	"github.com/xkilldash9x/concierge-cli/internal/llmclient"
	"github.com/xkilldash9x/concierge-cli/internal/observability"
	"github.com/xkilldash9x/concierge-cli/internal/store"
	"github.com/xkilldash9x/concierge-cli/internal/textpage"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive agent session on stdin/stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSession(parent context.Context) error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions, err := store.New(cfg.Store.Dir, logger)
	if err != nil {
		return err
	}

	hum := humanoid.New(humanoid.NewCDPExecutor(), cfg.Humanoid, logger)
	page := browser.New(cfg.Browser, hum, sessions, logger)
	if err := page.Start(ctx); err != nil {
		return err
	}
	defer page.Close()

	router, err := llmclient.NewRouterFromConfig(cfg.LLM, logger)
	if err != nil {
		return err
	}

	env := &actions.Env{
		Page:      page,
		Paginator: textpage.New(textpage.NewTiktoken(cfg.Agent.TokenizerEncoding)),
		Fast:      router.Tier(llmclient.TierFast),
		Cfg:       cfg.Agent,
		Logger:    logger,
	}
	registry := actions.NewRegistry(env)

	prompt := chain.NewSystemPrompt(cfg.Agent.UserName, cfg.Agent.UserLocation, time.Now())
	transcript := chain.NewChain(prompt)
	minifier := chain.NewMinifier(cfg.Agent.MaxAIMessages)

	d := driver.New(transcript, registry, env,
		router.Tier(llmclient.TierSmart), minifier, consoleSink{}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := d.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	g.Go(func() error {
		fmt.Println("concierge ready. Type a message and press enter (ctrl-c to quit).")
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if gctx.Err() != nil {
				return nil
			}
			d.Send(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("stdin closed: %w", err)
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Session ended with error", zap.Error(err))
		return err
	}
	return nil
}

// consoleSink renders driver events to stdout. Logging goes to stderr and the
// log file, so chat output stays clean.
type consoleSink struct{}

func (consoleSink) Chat(text string) {
	fmt.Printf("\nagent> %s\n", text)
}

func (consoleSink) Action(description string) {
	fmt.Printf("  [%s]\n", description)
}

func (consoleSink) Info(text string) {
	fmt.Printf("  (%s)\n", text)
}

func (consoleSink) CostDelta(delta, total float64) {
	if delta > 0 {
		fmt.Printf("  (cost +$%.4f, session $%.4f)\n", delta, total)
	}
}

func (consoleSink) Overlay(visible bool) {
	if visible {
		fmt.Println("  (the agent needs you: take over the browser window, then send a message when done)")
	}
}

func (consoleSink) Spinner(bool) {}
