package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"klondike/internal/bot"
	"klondike/internal/config"
	"klondike/internal/domain"
)

// newDealCommand creates the "deal" subcommand that deals one layout
// and prints it.
func newDealCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal a Klondike layout and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			var shuffler domain.Shuffler
			seeded := cmd.Flags().Changed("seed")
			seed, err := cmd.Flags().GetInt64("seed")
			if err != nil {
				return err
			}
			if seeded {
				shuffler = domain.NewSeededShuffler(seed)
			}

			state, err := domain.NewGame(shuffler)
			if err != nil {
				return fmt.Errorf("deal game: %w", err)
			}

			if seeded {
				fmt.Printf("seed: %d\n", seed)
			}
			reveal, _ := cmd.Flags().GetBool("reveal")
			printLayout(state, reveal)

			hint, _ := cmd.Flags().GetBool("hint")
			if !hint {
				return nil
			}

			loadOptionalGameConfig(opts, logger)
			level, err := bot.ParseLevel(config.GetHintAdvisorLevel())
			if err != nil {
				return err
			}
			agent := bot.NewAgent("advisor", level)
			move, err := agent.Suggest(state)
			if err != nil {
				return err
			}
			fmt.Printf("hint: %s\n", describeMove(state, move))
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "Deal deterministically from this seed instead of at random")
	cmd.Flags().Bool("reveal", false, "Show the faces of face-down cards")
	cmd.Flags().Bool("hint", false, "Ask the configured advisor for an opening move")

	return cmd
}

// printLayout writes one pile per line. Face-down cards print as "??"
// unless reveal is set.
func printLayout(state domain.GameState, reveal bool) {
	fmt.Printf("stock: %d cards\n", len(state.Stock))
	fmt.Printf("waste: %s\n", formatPile(state.Waste, reveal))
	for i := 0; i < domain.FoundationCount; i++ {
		fmt.Printf("%s: %s\n", domain.FoundationPile(i), formatPile(state.Foundations[i], reveal))
	}
	for i := 0; i < domain.TableauCount; i++ {
		fmt.Printf("%s: %s\n", domain.TableauPile(i), formatPile(state.Tableau[i], reveal))
	}
}

// formatPile renders a pile bottom to top.
func formatPile(pile []domain.Card, reveal bool) string {
	if len(pile) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(pile))
	for _, card := range pile {
		switch {
		case card.FaceUp:
			parts = append(parts, card.String())
		case reveal:
			parts = append(parts, "("+card.String()+")")
		default:
			parts = append(parts, "??")
		}
	}
	return strings.Join(parts, " ")
}

// describeMove renders an advisor move for a human.
func describeMove(state domain.GameState, move bot.Move) string {
	switch {
	case move.Pass:
		return "no productive move"
	case move.Draw:
		return "draw from the stock"
	}
	card := movedCard(state, move)
	if card == "" {
		return fmt.Sprintf("move %s onto %s", move.Source, move.Target)
	}
	return fmt.Sprintf("move %s from %s onto %s", card, move.Source, move.Target)
}

// movedCard names the card an advisor move picks up, if the move's
// source addresses one.
func movedCard(state domain.GameState, move bot.Move) string {
	switch {
	case move.Source == domain.PileWaste && len(state.Waste) > 0:
		return state.Waste[len(state.Waste)-1].String()
	case move.Source.IsTableau():
		pile := state.Tableau[move.Source.TableauIndex()]
		if move.Index >= 0 && move.Index < len(pile) {
			return pile[move.Index].String()
		}
	}
	return ""
}
