package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBlockContainsFAQ(t *testing.T) {
	k := Default()
	require.NoError(t, k.Validate())

	block := k.Block()
	assert.True(t, strings.HasPrefix(block, `You are a helpful and friendly customer support assistant for a fictional online store called "SwiftCart".`))
	assert.Contains(t, block, "*** Current Context ***\n- Our business hours are 9 AM to 6 PM IST, Monday to Friday.\n")
	assert.Contains(t, block, "*** FAQ Information ***")
	assert.Contains(t, block, "**1. Orders & Returns:**")
	assert.Contains(t, block, "- **Order Tracking:** Customers can track their order on our website: swiftcart.com/tracking.")
	assert.Contains(t, block, "**5. About SwiftCart:**")
}

func TestBlockIsStable(t *testing.T) {
	k := Default()
	assert.Equal(t, k.Block(), k.Block())
}

func TestRenderPrependsExtraContext(t *testing.T) {
	k := Default()
	block := k.Render("The current date is Tuesday, July 8, 2025.")

	assert.Contains(t, block, "- The current date is Tuesday, July 8, 2025.\n- Our business hours are")
}

func TestRenderSkipsEmptyContextSection(t *testing.T) {
	k := Knowledge{
		Instructions: []string{"Be brief."},
		Sections:     []Section{{Title: "Hours", Entries: []Entry{{Answer: "Always open."}}}},
	}

	block := k.Block()
	assert.NotContains(t, block, "Current Context")
	assert.Contains(t, block, "**1. Hours:**\n- Always open.\n")
}

func TestValidateRejectsIncompleteKnowledge(t *testing.T) {
	assert.ErrorIs(t, Knowledge{}.Validate(), ErrNoInstructions)
	assert.ErrorIs(t, Knowledge{Instructions: []string{"x"}}.Validate(), ErrNoSections)

	k := Knowledge{
		Instructions: []string{"x"},
		Sections:     []Section{{Title: "Hours", Entries: []Entry{{Topic: "Open", Answer: " "}}}},
	}
	assert.Error(t, k.Validate())
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.yaml")
	content := `
instructions:
  - You answer questions about Acme.
context:
  - Open all week.
sections:
  - title: Returns
    entries:
      - topic: Window
        answer: 14 days.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	k, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"You answer questions about Acme."}, k.Instructions)
	require.Len(t, k.Sections, 1)
	assert.Equal(t, "Window", k.Sections[0].Entries[0].Topic)
	assert.Equal(t, Default().Profile, k.Profile)
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kb.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"instructions": ["x"]}`), 0o600))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrNoSections)
}

func TestResolveDefaultsWithoutPath(t *testing.T) {
	k, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "Gem", k.Profile.AssistantName)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
