// Package repl is the plain-terminal surface: a readline loop where bare
// text is sent to the open conversation and slash commands drive session
// management.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"moia/internal/bootstrap"
	"moia/internal/defaults"
	"moia/internal/i18n"
)

// ANSI colors for prompt output
const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
)

// Loop 持有 REPL 状态：协调核心与输入
// Loop holds REPL state: the coordination core and the line input.
type Loop struct {
	*bootstrap.BuildResult
	input lineInput
	out   io.Writer
}

// NewLoop builds a REPL loop from a BuildResult.
func NewLoop(res *bootstrap.BuildResult) *Loop {
	input, err := newLineInput(filepath.Join(res.Config.Storage.BaseDir, "history"))
	if err != nil {
		res.Log.Warn().Err(err).Msg("readline unavailable, using basic input")
	}
	return &Loop{BuildResult: res, input: input, out: os.Stdout}
}

// Run runs the REPL until /quit, EOF, or Ctrl+C at an idle prompt.
func Run(loop *Loop) error {
	defer loop.input.Close()

	fmt.Fprintln(loop.out, dim(defaults.Disclaimer))
	go func() {
		if err := loop.Directory.Refresh(context.Background()); err != nil {
			loop.Log.Warn().Err(err).Msg("initial conversation refresh")
		}
	}()

	for {
		loop.printPromptHeader()
		line, err := loop.input.ReadLine(prompt())
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "/") {
			handled, quit := loop.handleCommand(text)
			if quit {
				return nil
			}
			if handled {
				continue
			}
			fmt.Fprintf(loop.out, "unknown command %s, try /help\n", strings.Fields(text)[0])
			continue
		}

		loop.send(text)
	}
}

// send dispatches one message and blocks until it settles. Ctrl+C while
// waiting cancels the request instead of killing the process.
func (l *Loop) send(text string) {
	before := len(l.Session.Messages())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := l.Controller.Send(context.Background(), text); err != nil {
			fmt.Fprintf(l.out, "%s\n", red(i18n.T("error.send", err)))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	for {
		select {
		case <-sig:
			l.Controller.Cancel()
		case <-done:
			l.printOutcome(before)
			return
		}
	}
}

// printOutcome reports how the send settled, judged by how the transcript
// moved: reply appended, echo alone (failure), or rolled back (cancel).
func (l *Loop) printOutcome(before int) {
	msgs := l.Session.Messages()
	switch {
	case len(msgs) >= before+2:
		fmt.Fprintln(l.out, msgs[len(msgs)-1].Text())
	case len(msgs) == before:
		fmt.Fprintln(l.out, dim(i18n.T("status.cancelled")))
	default:
		fmt.Fprintln(l.out, red(i18n.T("error.send", "no reply")))
	}
}

func (l *Loop) printPromptHeader() {
	label := l.Session.ConversationID()
	if label == "" {
		label = i18n.T("status.new")
	}
	header := fmt.Sprintf("%s · %s", label, i18n.T("status.tokens", l.Tokenizer.Count(l.Session.Messages())))
	if l.Session.VisionEnabled() {
		header += " · " + i18n.T("status.vision_on")
		if n := l.Session.Attachments().Count(); n > 0 {
			header += " · " + i18n.T("status.attachments", n)
		}
	}
	fmt.Fprintln(l.out, dim(header))
}

func prompt() string {
	if useColor() {
		return ansiGreen + "moia> " + ansiReset
	}
	return "moia> "
}

func useColor() bool {
	return os.Getenv("NO_COLOR") == ""
}

func dim(s string) string {
	if useColor() {
		return ansiDim + s + ansiReset
	}
	return s
}

func red(s string) string {
	if useColor() {
		return ansiRed + s + ansiReset
	}
	return s
}

func cyan(s string) string {
	if useColor() {
		return ansiCyan + s + ansiReset
	}
	return s
}
