// Package chatcmder provides the chat command for interactive sessions with a
// quill assistant.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/assistant"
	"github.com/quillhq/quill/pkg/cliui"
	"github.com/quillhq/quill/pkg/config"
	"github.com/quillhq/quill/pkg/credentials"
	"github.com/quillhq/quill/pkg/dotdir"
	"github.com/quillhq/quill/pkg/logger"
	"github.com/quillhq/quill/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("quill> ")
)

type chatCommander struct {
	apiTarget      string
	assistant      string
	includeHistory bool
	requestTimeout uint
	newConvo       bool
	noStream       bool
	logFile        string
	configDir      string
	debug          bool

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with a quill assistant.

Messages are sent to the configured quill API target and responses stream
back token by token. Draft and document updates the assistant produces along
the way are rendered inline as markdown.

The last conversation id is remembered in the .quill/ directory. Re-running
"quill chat" resumes that conversation by asking the server to include prior
history. Use --new to discard the remembered conversation and start fresh.

Examples:
  quill chat
  quill chat --assistant editor
  quill chat --new
  quill chat --no-stream
  quill chat --log-file ./quill-chat.log`

const chatShortDesc string = "Interactive chat with a quill assistant"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			fs := config.DefaultFlagSet()
			config.BindRegisteredFlags(v, cmd, fs, []string{
				config.FlagAPITarget,
				config.FlagAssistant,
				config.FlagRequestTimeout,
				config.FlagIncludeHistory,
			})

			cmder.apiTarget = v.GetString("client.api_target")
			cmder.assistant = v.GetString("client.assistant")
			cmder.requestTimeout = v.GetUint("client.request_timeout")
			cmder.includeHistory = v.GetBool("chat.include_history")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run()
		},
	}

	fs := config.DefaultFlagSet()
	config.AddStringFlag(cmd, fs, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, fs, config.FlagAssistant, &cmder.assistant)
	config.AddUintFlag(cmd, fs, config.FlagRequestTimeout, &cmder.requestTimeout)
	config.AddBoolFlag(cmd, fs, config.FlagIncludeHistory, &cmder.includeHistory)
	cmd.Flags().BoolVar(&cmder.newConvo, "new", false, "Discard the remembered conversation and start fresh")
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the full response instead of streaming tokens")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append JSON debug logs to this file")

	return cmd
}

func (c *chatCommander) run() error {
	if err := c.setupLogger(); err != nil {
		return err
	}

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	client := assistant.NewClient(c.apiTarget, creds, assistant.WithLogger(c.logger))

	ddm := dotdir.NewManager()

	if c.newConvo {
		if err := ddm.ClearConversationState(c.configDir); err != nil {
			return fmt.Errorf("clearing conversation state: %w", err)
		}
	}

	state, err := ddm.LoadConversationState(c.configDir)
	if err != nil {
		return fmt.Errorf("loading conversation state: %w", err)
	}

	// A remembered conversation for a different assistant is stale.
	if state != nil && state.Assistant != c.assistant {
		state = nil
	}

	fmt.Println()
	if state != nil {
		fmt.Printf("  %s Resuming conversation %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(utils.Truncate(state.ConversationID, 16)),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Assistant:"),
		cliui.NameStyle.Render(c.assistant),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /new starts over, /exit or Ctrl+D quits."))

	if !creds.HasToken() {
		fmt.Printf("  %s No API token found. Run 'quill auth' first.\n\n", cliui.WarnStyle.Render("!"))
	}

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/new" {
			if err := ddm.ClearConversationState(c.configDir); err != nil {
				fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
				continue
			}
			state = nil
			fmt.Printf("  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			continue
		}

		req := assistant.MessageRequest{
			Message:        input,
			IncludeHistory: state != nil && c.includeHistory,
		}

		if c.noStream {
			err = c.sendTurn(client, ddm, req, &state)
		} else {
			err = c.streamTurn(client, ddm, req, &state)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// setupLogger builds the session logger. Debug logs go pretty to stderr when
// --debug is set; --log-file additionally appends JSON records to the file.
func (c *chatCommander) setupLogger() error {
	base := logger.Nop()
	if c.debug {
		base = logger.New(
			logger.WithPretty(true),
			logger.WithDebug(true),
			logger.WithWriter(os.Stderr),
		)
	}

	if c.logFile == "" {
		c.logger = base
		return nil
	}

	f, err := os.OpenFile(c.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	fileLogger := logger.New(
		logger.WithJSON(true),
		logger.WithDebug(true),
		logger.WithWriter(f),
	)

	c.logger = logger.Multi(base, fileLogger)
	return nil
}

// streamTurn sends one message and renders the streamed response as it
// arrives. Returns after the stream settles on a terminal callback or the
// request timeout fires.
func (c *chatCommander) streamTurn(client *assistant.Client, ddm *dotdir.Manager, req assistant.MessageRequest, state **dotdir.ConversationState) error {
	fmt.Print(assistantPrompt)

	done := make(chan struct{})
	var streamErr error

	handlers := assistant.Handlers{
		OnToken: func(token string) {
			fmt.Print(token)
		},
		OnConversationID: func(id string) {
			c.rememberConversation(ddm, id, state)
		},
		OnDraftUpdate: func(update assistant.DraftUpdate) {
			c.renderDraftUpdate(update)
		},
		OnDocumentUpdate: func(update assistant.DocumentUpdate) {
			c.renderDocumentUpdate(update)
		},
		OnComplete: func(summary assistant.StreamSummary) {
			fmt.Println()
			c.renderSummary(summary)
			close(done)
		},
		OnError: func(msg string) {
			streamErr = fmt.Errorf("%s", msg)
			close(done)
		},
	}

	cancel, err := client.Stream(context.Background(), c.assistant, req, handlers)
	if err != nil {
		return err
	}

	if c.requestTimeout == 0 {
		<-done
		return streamErr
	}

	select {
	case <-done:
		return streamErr
	case <-time.After(time.Duration(c.requestTimeout) * time.Second):
		cancel()
		return fmt.Errorf("no response after %ds", c.requestTimeout)
	}
}

// sendTurn sends one message and waits for the complete response.
func (c *chatCommander) sendTurn(client *assistant.Client, ddm *dotdir.Manager, req assistant.MessageRequest, state **dotdir.ConversationState) error {
	ctx := context.Background()
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.requestTimeout)*time.Second)
		defer cancel()
	}

	var resp *assistant.MessageResponse
	err := cliui.Step(os.Stdout, "Thinking", func() error {
		var sendErr error
		resp, sendErr = client.Send(ctx, c.assistant, req)
		return sendErr
	})
	if err != nil {
		return err
	}

	if resp.ConversationID != "" {
		c.rememberConversation(ddm, resp.ConversationID, state)
	}

	fmt.Printf("%s%s\n", assistantPrompt, resp.Reply)
	c.renderSummary(assistant.StreamSummary{
		ConversationID: resp.ConversationID,
		Citations:      resp.Citations,
		TokensInput:    resp.TokensInput,
		TokensOutput:   resp.TokensOutput,
	})

	return nil
}

// rememberConversation persists the conversation id so the next session can
// resume it.
func (c *chatCommander) rememberConversation(ddm *dotdir.Manager, id string, state **dotdir.ConversationState) {
	next := &dotdir.ConversationState{
		Assistant:      c.assistant,
		ConversationID: id,
		UpdatedAt:      time.Now().UTC(),
	}

	if err := ddm.SaveConversationState(next, c.configDir); err != nil {
		c.logger.Debug("failed to save conversation state", "error", err)
		return
	}

	*state = next
}

func (c *chatCommander) renderDraftUpdate(update assistant.DraftUpdate) {
	fmt.Printf("\n\n  %s %s\n",
		cliui.HeaderStyle.Render("Draft updated"),
		cliui.DimStyle.Render(update.Subject),
	)

	rendered, err := cliui.RenderMarkdown(update.BodyDraft)
	if err != nil {
		c.logger.Debug("rendering draft markdown", "error", err)
		rendered = update.BodyDraft + "\n"
	}
	fmt.Print(rendered)

	if update.Tone != "" || update.Reason != "" {
		fmt.Printf("  %s\n", cliui.DimStyle.Render(strings.TrimSpace(update.Tone+" "+update.Reason)))
	}

	fmt.Print(assistantPrompt)
}

func (c *chatCommander) renderDocumentUpdate(update assistant.DocumentUpdate) {
	fmt.Printf("\n\n  %s\n", cliui.HeaderStyle.Render("Document updated"))

	rendered, err := cliui.RenderMarkdown(update.MarkdownContent)
	if err != nil {
		c.logger.Debug("rendering document markdown", "error", err)
		rendered = update.MarkdownContent + "\n"
	}
	fmt.Print(rendered)

	if update.Summary != "" {
		fmt.Printf("  %s\n", cliui.DimStyle.Render(update.Summary))
	}

	fmt.Print(assistantPrompt)
}

func (c *chatCommander) renderSummary(summary assistant.StreamSummary) {
	parts := []string{}
	if len(summary.Citations) > 0 {
		parts = append(parts, fmt.Sprintf("%d citations", len(summary.Citations)))
	}
	if summary.TokensInput > 0 || summary.TokensOutput > 0 {
		parts = append(parts, fmt.Sprintf("%d in / %d out", summary.TokensInput, summary.TokensOutput))
	}

	if len(parts) == 0 {
		return
	}

	fmt.Printf("  %s\n", cliui.DimStyle.Render("("+strings.Join(parts, ", ")+")"))
}
