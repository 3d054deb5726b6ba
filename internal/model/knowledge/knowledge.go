package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// Profile captures the assistant identity exposed to the widget header.
type Profile struct {
	AssistantName string `json:"assistantName" mapstructure:"assistant_name"`
	StoreName     string `json:"storeName" mapstructure:"store_name"`
	Title         string `json:"title" mapstructure:"title"`
	Caption       string `json:"caption" mapstructure:"caption"`
	Greeting      string `json:"greeting,omitempty" mapstructure:"greeting"`
	Placeholder   string `json:"placeholder" mapstructure:"placeholder"`
	SupportEmail  string `json:"supportEmail" mapstructure:"support_email"`
	SupportPhone  string `json:"supportPhone" mapstructure:"support_phone"`
}

// Entry is a single FAQ answer.
type Entry struct {
	Topic  string `json:"topic" mapstructure:"topic"`
	Answer string `json:"answer" mapstructure:"answer"`
}

// Section groups FAQ entries under a heading.
type Section struct {
	Title   string  `json:"title" mapstructure:"title"`
	Entries []Entry `json:"entries" mapstructure:"entries"`
}

// Knowledge is the static instruction and FAQ material sent with every prompt.
type Knowledge struct {
	Profile      Profile   `json:"profile" mapstructure:"profile"`
	Instructions []string  `json:"instructions" mapstructure:"instructions"`
	Context      []string  `json:"context" mapstructure:"context"`
	Sections     []Section `json:"sections" mapstructure:"sections"`
}

var (
	ErrNoInstructions = errors.New("knowledge has no instructions")
	ErrNoSections     = errors.New("knowledge has no faq sections")
)

// Validate checks that the knowledge can produce a usable prompt.
func (k Knowledge) Validate() error {
	if len(nonEmpty(k.Instructions)) == 0 {
		return ErrNoInstructions
	}
	if len(k.Sections) == 0 {
		return ErrNoSections
	}
	for i, section := range k.Sections {
		if strings.TrimSpace(section.Title) == "" {
			return fmt.Errorf("faq section %d has no title", i+1)
		}
		for j, entry := range section.Entries {
			if strings.TrimSpace(entry.Answer) == "" {
				return fmt.Errorf("faq section %q entry %d has no answer", section.Title, j+1)
			}
		}
	}
	return nil
}

// Block renders the instruction preamble and FAQ text.
func (k Knowledge) Block() string {
	return k.Render()
}

// Render is Block with extra lines appended to the current context section.
func (k Knowledge) Render(extraContext ...string) string {
	var builder strings.Builder

	builder.WriteString(strings.Join(nonEmpty(k.Instructions), "\n"))
	builder.WriteString("\n")

	contextLines := append(nonEmpty(extraContext), nonEmpty(k.Context)...)
	if len(contextLines) > 0 {
		builder.WriteString("\n*** Current Context ***\n")
		for _, line := range contextLines {
			builder.WriteString("- ")
			builder.WriteString(line)
			builder.WriteString("\n")
		}
	}

	builder.WriteString("\n*** FAQ Information ***\n")
	for i, section := range k.Sections {
		builder.WriteString(fmt.Sprintf("\n**%d. %s:**\n", i+1, strings.TrimSpace(section.Title)))
		for _, entry := range section.Entries {
			builder.WriteString("- ")
			if topic := strings.TrimSpace(entry.Topic); topic != "" {
				builder.WriteString(fmt.Sprintf("**%s:** ", topic))
			}
			builder.WriteString(strings.TrimSpace(entry.Answer))
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
