package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/arcanaland/ankideck/internal/config"
	"github.com/arcanaland/ankideck/internal/deck"
	"github.com/arcanaland/ankideck/internal/generator"
	"github.com/arcanaland/ankideck/internal/logging"
	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RootCmd generates a deck when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ankideck input.yaml output.apkg deck_name",
	Short: "Build Anki decks from YAML card lists",
	Long: `Ankideck converts a YAML list of flashcards into an Anki package (.apkg).

Each card is a mapping with a type and its fields:
  - type: basic                 front, back
  - type: type-in-the-answer    front, back (back is compared verbatim)
  - type: cloze                 text with {{c1::...}} deletions

Cards of any other type are skipped with a warning.`,
	Example: `  ankideck cards.yaml geography.apkg "Geography"
  ankideck --seed 42 cards.yaml out.apkg "Reproducible"`,
	Args:          cobra.ExactArgs(3),
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	RootCmd.Flags().Uint64("seed", 0, "Seed for the deck id; 0 picks one at random")
	RootCmd.Flags().String("description", "", "Deck description")

	RootCmd.AddCommand(validateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Arguments are valid past this point; failures are not usage errors
	cmd.SilenceUsage = true

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	g := generator.New(generator.Options{
		Rand:        deck.NewRand(seed),
		Logger:      logger,
		Description: cfg.Description,
	})

	res, err := g.Generate(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(res.Skipped) > 0 {
		colorize.New(colorize.FgYellow).Fprintf(out, "Skipped %d card(s) of unknown type\n", len(res.Skipped))
	}
	colorize.New(colorize.FgGreen).Fprintf(out, "Anki deck '%s' has been generated and saved to %s\n", res.DeckName, res.Output)
	fmt.Fprintf(out, "%d card(s), deck id %d\n", res.Notes, res.DeckID)

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
