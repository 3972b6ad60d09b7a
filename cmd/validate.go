package cmd

import (
	"fmt"
	"os"

	"github.com/arcanaland/ankideck/internal/validator"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [input.yaml]",
	Short: "Check a card file without writing a package",
	Long: `Validate parses a card file and reports problems that would abort generation
(missing keys, invalid tags) as errors, and suspicious content (unknown types,
empty fields, cloze text without deletions, duplicate cloze notes) as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]
		out := cmd.OutOrStdout()

		// Check if path exists
		if _, err := os.Stat(inputPath); os.IsNotExist(err) {
			return fmt.Errorf("card file not found: %s", inputPath)
		}
		cmd.SilenceUsage = true

		v := validator.NewValidator(inputPath)
		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %w", err)
		}

		// Display validation results
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ '%s' is valid (%d cards).\n", inputPath, results.Cards)
		} else {
			fmt.Fprintf(out, "❌ '%s' has %d validation errors:\n", inputPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}
