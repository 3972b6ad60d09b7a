package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arcanaland/ankideck/internal/apkg"
	"github.com/arcanaland/ankideck/internal/model"
	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	colorize.NoColor = true
	os.Exit(m.Run())
}

// resetFlags restores every flag to its default between executions
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(RootCmd)

	buf := new(bytes.Buffer)
	RootCmd.SetOut(buf)
	RootCmd.SetErr(buf)
	RootCmd.SetArgs(args)

	err := RootCmd.Execute()
	return buf.String(), err
}

func writeCards(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerateCommand(t *testing.T) {
	input := writeCards(t, `
- {type: basic, front: "2+2?", back: "4"}
- {type: mystery, front: a, back: b}
`)
	output := filepath.Join(t.TempDir(), "out.apkg")

	out, err := execute(t, "--seed", "42", "--log-level", "error", input, output, "Arithmetic")
	require.NoError(t, err)
	assert.Contains(t, out, "Anki deck 'Arithmetic' has been generated and saved to "+output)
	assert.Contains(t, out, "Skipped 1 card(s)")

	c, err := apkg.Open(output)
	require.NoError(t, err)
	require.Len(t, c.Notes, 1)
	assert.Equal(t, model.BasicID, c.Notes[0].ModelID)
	assert.Equal(t, `<div style="text-align:left;">2+2?</div>`, c.Notes[0].Fields[0])

	// Same seed, same deck id
	second := filepath.Join(t.TempDir(), "again.apkg")
	_, err = execute(t, "--seed", "42", "--log-level", "error", input, second, "Arithmetic")
	require.NoError(t, err)
	again, err := apkg.Open(second)
	require.NoError(t, err)
	assert.Equal(t, c.Decks[0].ID, again.Decks[0].ID)
}

func TestGenerateWrongArgCount(t *testing.T) {
	_, err := execute(t, "only-one.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg(s)")
}

func TestGenerateMalformedInput(t *testing.T) {
	input := writeCards(t, "- {type: basic, front: [broken\n")
	output := filepath.Join(t.TempDir(), "out.apkg")

	_, err := execute(t, "--log-level", "error", input, output, "Deck")
	require.Error(t, err)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidateCommand(t *testing.T) {
	good := writeCards(t, "- {type: cloze, text: \"{{c1::ok}}\"}\n")
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (1 cards)")

	bad := writeCards(t, "- {type: basic, front: q}\n- {type: odd}\n")
	out, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "1 validation errors")
	assert.Contains(t, out, `missing required key "back"`)
	assert.Contains(t, out, `unknown card type "odd"`)

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestShowCommand(t *testing.T) {
	input := writeCards(t, `
- {type: basic, front: "Tom & Jerry?", back: "cat & mouse", tags: [cartoons]}
- {type: cloze, text: "{{c1::Paris}} is in {{c2::France}}"}
- {type: type-in-the-answer, front: "1+1", back: "2"}
`)
	output := filepath.Join(t.TempDir(), "show.apkg")
	_, err := execute(t, "--log-level", "error", "--description", "Mixed", input, output, "Show Deck")
	require.NoError(t, err)

	out, err := execute(t, "show", "--limit", "2", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Deck:  Show Deck")
	assert.Contains(t, out, "About: Mixed")
	assert.Contains(t, out, "Notes: 3")
	assert.Contains(t, out, "Cloze Model (cloze; Text)")
	assert.Contains(t, out, "1. Basic Model · cartoons")
	assert.Contains(t, out, "Tom & Jerry?")
	assert.Contains(t, out, "2. Cloze Model · 2 cards")
	assert.Contains(t, out, "... 1 more")
	assert.NotContains(t, out, "3. Type-in-the-Answer Model")
}

func TestConfigCommands(t *testing.T) {
	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file initialized at:")

	out, err = execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("ankideck", "config.toml"))

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `log_level = "info"`)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{""}, wrapText("", 20))
	assert.Equal(t, []string{"aaa bbb", "ccc"}, wrapText("aaa bbb ccc", 10))
}
