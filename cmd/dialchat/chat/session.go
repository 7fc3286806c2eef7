package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/papercomputeco/dialchat/pkg/cliui"
	"github.com/papercomputeco/dialchat/pkg/config"
	"github.com/papercomputeco/dialchat/pkg/llm"
	"github.com/papercomputeco/dialchat/pkg/logger"
	"github.com/papercomputeco/dialchat/pkg/utils"
)

const (
	systemPromptQuestion = "Provide System prompt or press 'enter' to continue."
	userPromptQuestion   = "Type your question or 'exit' to quit."
	goodbye              = "Exiting the chat. Goodbye!"
)

// errInterrupted replaces the context error when Ctrl+C cancels a turn.
var errInterrupted = errors.New("interrupted")

// Completer is the part of dial.Client a Session needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (llm.Message, error)
	StreamCompletion(ctx context.Context, messages []llm.Message, onFragment func(string) error) (llm.Message, error)
}

// Session is one interactive conversation on a console.
type Session struct {
	Client Completer

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// Stream selects streamed replies; otherwise the whole reply is awaited.
	Stream bool

	// Markdown renders whole replies with glamour. Streamed replies are
	// printed as they arrive and are never rendered.
	Markdown bool

	// Spinner shows a progress spinner on Err while a whole reply is awaited.
	Spinner bool

	// SystemPrompt skips the startup question when set.
	SystemPrompt string

	Logger *slog.Logger
}

// Run drives the conversation until the user exits, input ends or ctx is
// cancelled. A failed turn is reported and dropped from the history so it
// can be retried; it does not end the session.
func (s *Session) Run(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = logger.Nop()
	}

	scanner := bufio.NewScanner(s.In)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	systemPrompt := s.SystemPrompt
	if systemPrompt == "" {
		fmt.Fprintf(s.Out, "%s\n%s", systemPromptQuestion, cliui.UserPrompt)
		if !scanner.Scan() {
			return s.finish(scanner.Err())
		}
		systemPrompt = strings.TrimSpace(scanner.Text())
	}
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	conversation := llm.NewConversation()
	conversation.Add(llm.NewTextMessage(llm.RoleSystem, systemPrompt))

	for {
		if ctx.Err() != nil {
			return s.finish(nil)
		}

		fmt.Fprintf(s.Out, "\n%s\n%s", userPromptQuestion, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExit(input) {
			fmt.Fprintln(s.Out, goodbye)
			return nil
		}

		conversation.Add(llm.NewTextMessage(llm.RoleUser, input))

		start := time.Now()
		reply, err := s.turn(ctx, conversation.Messages())
		if err != nil {
			fmt.Fprintf(s.Err, "  %s %v\n", cliui.FailMark, err)
			s.Logger.Debug("turn failed",
				"error", err,
				"prompt", utils.Truncate(input, 80),
			)

			// Remove the failed user message so we can retry
			conversation.DropLast()
			continue
		}

		conversation.Add(reply)
		s.Logger.Debug("turn complete",
			"elapsed", time.Since(start),
			"reply_bytes", len(reply.Content),
			"history", conversation.Len(),
		)
	}

	return s.finish(scanner.Err())
}

func (s *Session) finish(err error) error {
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, goodbye)
	return nil
}

// turn sends one request. Ctrl+C cancels only this request.
func (s *Session) turn(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var (
		reply llm.Message
		err   error
	)
	if s.Stream {
		reply, err = s.streamTurn(turnCtx, messages)
	} else {
		reply, err = s.wholeTurn(turnCtx, messages)
	}

	if err != nil && turnCtx.Err() != nil && ctx.Err() == nil {
		return llm.Message{}, errInterrupted
	}
	return reply, err
}

func (s *Session) streamTurn(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	fmt.Fprint(s.Out, cliui.AssistantPrefix)

	// Escape sequences may be split across fragments.
	var sanitizer cliui.StreamSanitizer
	reply, err := s.Client.StreamCompletion(ctx, messages, func(fragment string) error {
		_, err := io.WriteString(s.Out, sanitizer.Write(fragment))
		return err
	})
	fmt.Fprintln(s.Out, sanitizer.Flush())
	return reply, err
}

func (s *Session) wholeTurn(ctx context.Context, messages []llm.Message) (llm.Message, error) {
	var reply llm.Message
	request := func() error {
		var err error
		reply, err = s.Client.Complete(ctx, messages)
		return err
	}

	var err error
	if s.Spinner {
		err = cliui.Step(s.Err, "Waiting for reply", request)
	} else {
		err = request()
	}
	if err != nil {
		return llm.Message{}, err
	}

	content := cliui.Sanitize(reply.Content)
	if s.Markdown {
		rendered, renderErr := cliui.RenderMarkdown(content)
		if renderErr != nil {
			s.Logger.Debug("rendering markdown", "error", renderErr)
		}
		fmt.Fprintf(s.Out, "%s\n%s", cliui.AssistantPrefix, rendered)
	} else {
		fmt.Fprintf(s.Out, "%s%s\n", cliui.AssistantPrefix, content)
	}

	return reply, nil
}

func isExit(input string) bool {
	return strings.EqualFold(input, "exit") || input == "/exit"
}
