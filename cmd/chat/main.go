// Command chat runs the support assistant in a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/zhouzirui/swiftcart-support/backend/internal/config"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
	"github.com/zhouzirui/swiftcart-support/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/swiftcart-support/backend/internal/service/chat"
	"github.com/zhouzirui/swiftcart-support/backend/pkg/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runMain(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runMain(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.AI.Enabled() {
		key, err := promptCredential(cfg.AI.CredentialEnv())
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%w: %s is required to chat", ai.ErrNotConfigured, cfg.AI.CredentialEnv())
		}
		cfg.AI.SetCredential(key)
	}

	k, err := knowledge.Resolve(cfg.Chat.KnowledgeFile)
	if err != nil {
		return err
	}

	generator, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		return err
	}
	assembler := ai.NewAssembler(k, ai.AssemblerOptions{
		MaxTurns:    cfg.Chat.HistoryMaxTurns,
		MaxChars:    cfg.Chat.HistoryMaxChars,
		IncludeDate: cfg.Chat.IncludeDate,
	})
	responder := ai.NewResponder(assembler, generator, ai.ResponderOptions{
		Provider: cfg.AI.Provider,
		Timeout:  cfg.Chat.RequestTimeout,
	})

	svc := chatservice.NewService()
	session, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	conv, err := svc.Conversation(ctx, session.ID)
	if err != nil {
		return err
	}

	return run(ctx, os.Stdin, os.Stdout, k.Profile, conv, responder)
}

// promptCredential asks for the provider key, hiding input on a terminal.
func promptCredential(envName string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s is not set. Enter it to continue (input hidden): ", envName)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read credential: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// run drives one conversation until EOF, /quit or ctx is cancelled.
func run(ctx context.Context, in io.Reader, out io.Writer, profile knowledge.Profile, conv *chatservice.Conversation, responder *ai.Responder) error {
	fmt.Fprintf(out, "%s\n%s\n\n", profile.Title, profile.Caption)
	if profile.Greeting != "" {
		fmt.Fprintf(out, "%s: %s\n", profile.AssistantName, profile.Greeting)
	}
	fmt.Fprintln(out, "Commands: /retry, /history, /quit")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/history":
			printHistory(out, profile, conv.Messages())
			continue
		case "/retry":
		default:
			if _, err := conv.Submit(line); err != nil {
				if chatservice.IsInputError(err) {
					continue
				}
				fmt.Fprintf(out, "! %v\n", err)
				if errors.Is(err, chatservice.ErrTurnPending) {
					fmt.Fprintln(out, "! use /retry to ask again")
				}
				continue
			}
		}

		answer(ctx, out, profile, conv, responder)
	}
}

func answer(ctx context.Context, out io.Writer, profile knowledge.Profile, conv *chatservice.Conversation, responder *ai.Responder) {
	reply, err := responder.Respond(ctx, conv)
	switch {
	case err != nil:
		fmt.Fprintf(out, "! %v\n! your question is kept, use /retry to try again\n", err)
	case reply == nil:
		fmt.Fprintln(out, "! nothing to retry")
	default:
		fmt.Fprintf(out, "%s: %s\n", profile.AssistantName, reply.Content)
	}
}

func printHistory(out io.Writer, profile knowledge.Profile, messages []chat.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(out, "(no messages yet)")
		return
	}
	for _, msg := range messages {
		speaker := "You"
		if msg.Role == chat.RoleAssistant {
			speaker = profile.AssistantName
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", msg.CreatedAt.Local().Format("15:04"), speaker, msg.Content)
	}
}
