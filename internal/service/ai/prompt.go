package ai

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zhouzirui/swiftcart-support/backend/internal/model/chat"
	"github.com/zhouzirui/swiftcart-support/backend/internal/model/knowledge"
)

const (
	historyHeader  = "*** Conversation History ***"
	questionHeader = "*** Current Question ***"
)

// AssemblerOptions bounds the history sent with each prompt. Zero values
// mean unbounded.
type AssemblerOptions struct {
	MaxTurns    int
	MaxChars    int
	IncludeDate bool
	Now         func() time.Time
}

// Assembler turns the knowledge block and a transcript into one prompt string.
type Assembler struct {
	knowledge knowledge.Knowledge
	block     string
	opts      AssemblerOptions
}

// NewAssembler renders the knowledge block once and keeps it for every prompt.
func NewAssembler(k knowledge.Knowledge, opts AssemblerOptions) *Assembler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{
		knowledge: k,
		block:     k.Block(),
		opts:      opts,
	}
}

// Build assembles the prompt for question. history must not contain the
// question itself; it is rendered only in the current question section.
func (a *Assembler) Build(history []chat.Message, question string) string {
	var builder strings.Builder

	if a.opts.IncludeDate {
		builder.WriteString(a.knowledge.Render("The current date is " + a.opts.Now().Format("Monday, January 2, 2006") + "."))
	} else {
		builder.WriteString(a.block)
	}

	builder.WriteString("\n")
	builder.WriteString(historyHeader)
	builder.WriteString("\n")
	builder.WriteString(SerializeHistory(a.Window(history)))

	builder.WriteString("\n")
	builder.WriteString(questionHeader)
	builder.WriteString("\nuser: ")
	builder.WriteString(question)
	builder.WriteString("\nassistant:")

	return builder.String()
}

// Window keeps the most recent history that fits MaxTurns and MaxChars.
func (a *Assembler) Window(history []chat.Message) []chat.Message {
	start := 0
	if a.opts.MaxTurns > 0 && len(history) > a.opts.MaxTurns {
		start = len(history) - a.opts.MaxTurns
	}

	if a.opts.MaxChars > 0 {
		total := 0
		for i := len(history) - 1; i >= start; i-- {
			total += utf8.RuneCountInString(historyLine(history[i]))
			if total > a.opts.MaxChars {
				start = i + 1
				break
			}
		}
	}

	return history[start:]
}

// SerializeHistory renders turns as "role: content" lines, oldest first.
func SerializeHistory(history []chat.Message) string {
	var builder strings.Builder
	for _, msg := range history {
		builder.WriteString(historyLine(msg))
	}
	return builder.String()
}

func historyLine(msg chat.Message) string {
	return string(msg.Role) + ": " + msg.Content + "\n"
}
