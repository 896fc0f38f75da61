package main

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/vancomm/edgematch-server/internal/puzzle"
)

var (
	dealSeed  uint64
	dealSolve bool
)

func init() {
	dealCmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal a puzzle and optionally solve it",
		Long: `Deal nine random pieces and print them.

Examples:
  edgematch deal
  edgematch deal --seed 42 --solve`,
		RunE: runDeal,
	}

	dealCmd.Flags().Uint64VarP(&dealSeed, "seed", "s", 0, "random seed, 0 picks one")
	dealCmd.Flags().BoolVar(&dealSolve, "solve", false, "run the solver and print its layout")

	rootCmd.AddCommand(dealCmd)
}

func runDeal(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	seed := dealSeed
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	game := puzzle.NewGame(rand.New(rand.NewPCG(seed, seed)))

	fmt.Fprintf(out, "seed %d\n", seed)
	for _, p := range game.Pieces {
		fmt.Fprintln(out, p)
	}

	if !dealSolve {
		return nil
	}

	_, stats, ok := puzzle.Solve(game.Pieces)
	fmt.Fprintf(out, "\nsearched %d nodes in %s\n", stats.Nodes, stats.Duration)
	if !ok {
		fmt.Fprintln(out, "no solution")
		return nil
	}

	game.SolvePuzzle()
	fmt.Fprintf(out, "\n%s\n%s\n", game, game.CheckResult)
	return nil
}
