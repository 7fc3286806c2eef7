// Package chatcmder provides the chat command for an interactive console
// conversation with a DIAL deployment.
package chatcmder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/dialchat/pkg/cliui"
	"github.com/papercomputeco/dialchat/pkg/config"
	"github.com/papercomputeco/dialchat/pkg/dial"
	"github.com/papercomputeco/dialchat/pkg/dotdir"
	"github.com/papercomputeco/dialchat/pkg/logger"
)

type chatCommander struct {
	configDir string
	debug     bool
	trace     bool
	logFile   string

	// Registry-backed flags; the effective values are read back from viper.
	endpoint     string
	deployment   string
	apiKeyEnv    string
	timeout      string
	stream       bool
	markdown     bool
	systemPrompt string

	cfg     *config.Config
	client  *dial.Client
	logger  *slog.Logger
	closers []io.Closer
}

const chatLongDesc string = `Start an interactive chat session with a DIAL deployment.

Replies are streamed as they are generated unless --stream=false is given,
in which case the whole reply is awaited (and optionally rendered as
markdown with --markdown).

The API key is read from the environment variable named by dial.api_key_env
(DIAL_API_KEY by default). A .env file in the working directory or the
.dialchat/ directory is loaded first.

Type "exit" or "/exit", or press Ctrl+D, to quit. Ctrl+C while a reply is
being generated cancels that reply only.

Examples:
  dialchat chat
  dialchat chat --deployment gpt-4o-mini --system-prompt "Answer in French."
  dialchat chat --stream=false --markdown
  dialchat chat --trace`

const chatShortDesc string = "Interactive chat with a DIAL deployment"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			return cmder.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.close()
			return cmder.run(cmd.Context(), cmd)
		},
	}

	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagDeployment, &cmder.deployment)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagAPIKeyEnv, &cmder.apiKeyEnv)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagTimeout, &cmder.timeout)
	config.AddBoolFlag(cmd, config.ChatFlags, config.FlagStream, &cmder.stream)
	config.AddBoolFlag(cmd, config.ChatFlags, config.FlagMarkdown, &cmder.markdown)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagSystemPrompt, &cmder.systemPrompt)

	cmd.Flags().BoolVar(&cmder.trace, "trace", false, "Dump every request and response to stderr")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON debug logs to this file")

	return cmd
}

// load layers flags, DIALCHAT_* env, config.toml and defaults, then builds
// the logger and the client.
func (c *chatCommander) load(cmd *cobra.Command) error {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.ChatFlags, config.ChatFlagKeys())
	c.cfg = config.FromViper(v)

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving config dir: %w", err)
	}
	if err := config.LoadDotEnv(".", target); err != nil {
		return err
	}

	if err := c.newLogger(); err != nil {
		return err
	}

	timeout, err := c.cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	apiKey := c.cfg.APIKey()
	if apiKey == "" {
		return fmt.Errorf("%w: set %s in the environment or a .env file", dial.ErrMissingAPIKey, c.cfg.Dial.APIKeyEnv)
	}

	opts := []dial.Option{
		dial.WithLogger(c.logger),
		dial.WithTimeout(timeout),
	}
	if c.trace {
		opts = append(opts, dial.WithTrace(cmd.ErrOrStderr()))
	}

	c.client, err = dial.New(dial.Config{
		Endpoint:   c.cfg.Dial.Endpoint,
		Deployment: c.cfg.Dial.Deployment,
		APIKey:     apiKey,
	}, opts...)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	c.logger.Debug("chat configured",
		"url", c.client.URL(),
		"stream", c.cfg.Chat.Stream,
		"markdown", c.cfg.Chat.Markdown,
		"timeout", timeout,
	)
	return nil
}

func (c *chatCommander) newLogger() error {
	c.logger = logger.New(
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
		logger.WithPretty(isTerminal(os.Stderr)),
	)

	if c.logFile == "" {
		return nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	c.closers = append(c.closers, f)

	c.logger = logger.Multi(c.logger, logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(true),
	))
	return nil
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	mode := "streaming"
	if !c.cfg.Chat.Stream {
		mode = "whole reply"
	}
	fmt.Fprintf(out, "\n  %s %s %s\n",
		cliui.KeyStyle.Render("Deployment:"),
		cliui.NameStyle.Render(c.cfg.Dial.Deployment),
		cliui.DimStyle.Render("("+mode+")"),
	)
	fmt.Fprintf(out, "  %s\n\n", cliui.DimStyle.Render("Type exit or /exit, or press Ctrl+D, to quit. Ctrl+C cancels a reply."))

	session := &Session{
		Client:       c.client,
		In:           cmd.InOrStdin(),
		Out:          out,
		Err:          cmd.ErrOrStderr(),
		Stream:       c.cfg.Chat.Stream,
		Markdown:     c.cfg.Chat.Markdown,
		Spinner:      isTerminal(os.Stderr),
		SystemPrompt: c.cfg.Chat.SystemPrompt,
		Logger:       c.logger,
	}
	return session.Run(ctx)
}

func (c *chatCommander) close() {
	for _, cl := range c.closers {
		_ = cl.Close()
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
