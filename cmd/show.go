package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/arcanaland/ankideck/internal/apkg"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [package.apkg]",
	Short: "Display the decks, models and cards in a package",
	Long: `Show opens an Anki package and prints its decks, note types and notes.
Field HTML is reduced to plain text for display.

Examples:
  ankideck show geography.apkg
  ankideck show --limit 5 geography.apkg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		// Check if path exists
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("package not found: %s", args[0])
		}
		cmd.SilenceUsage = true

		c, err := apkg.Open(args[0])
		if err != nil {
			return fmt.Errorf("error opening package: %w", err)
		}

		displayContents(cmd.OutOrStdout(), c, limit, terminalWidth())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().IntP("limit", "n", 0, "Show at most this many notes (0 shows all)")
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// displayContents prints a package summary followed by its notes
func displayContents(w io.Writer, c *apkg.Contents, limit, width int) {
	for _, d := range c.Decks {
		fmt.Fprintln(w, colorize.CyanString("Deck:  ")+colorize.HiWhiteString("%s", d.Name))
		fmt.Fprintln(w, colorize.CyanString("ID:    ")+colorize.HiWhiteString("%d", d.ID))
		if d.Description != "" {
			fmt.Fprintln(w, colorize.CyanString("About: ")+d.Description)
		}
	}
	fmt.Fprintln(w, colorize.CyanString("Notes: ")+colorize.HiWhiteString("%d", len(c.Notes)))

	fmt.Fprintln(w)
	fmt.Fprintln(w, colorize.CyanString("Note types:"))
	for _, m := range c.Models {
		kind := "standard"
		if m.Cloze {
			kind = "cloze"
		}
		fmt.Fprintf(w, "  %d  %s (%s; %s)\n", m.ID, m.Name, kind, strings.Join(m.Fields, ", "))
	}

	notes := c.Notes
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}

	// Leave room for the "  n. " prefix
	textWidth := width - 8
	for i, n := range notes {
		fmt.Fprintln(w)

		modelName := fmt.Sprint(n.ModelID)
		if m, ok := c.Model(n.ModelID); ok {
			modelName = m.Name
		}
		header := fmt.Sprintf("%d. %s", i+1, modelName)
		if len(n.Cards) != 1 {
			header += fmt.Sprintf(" · %d cards", len(n.Cards))
		}
		if len(n.Tags) > 0 {
			header += " · " + strings.Join(n.Tags, " ")
		}
		fmt.Fprintln(w, colorize.YellowString("%s", header))

		for j, field := range n.Fields {
			marker := "Q"
			if j > 0 {
				marker = "A"
			}
			for k, line := range wrapText(apkg.PlainText(field), textWidth) {
				if k == 0 {
					fmt.Fprintf(w, "  %s  %s\n", colorize.CyanString(marker), line)
				} else {
					fmt.Fprintf(w, "     %s\n", line)
				}
			}
		}
	}

	if len(notes) < len(c.Notes) {
		fmt.Fprintf(w, "\n... %d more\n", len(c.Notes)-len(notes))
	}
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	// Ensure width is reasonable
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}
