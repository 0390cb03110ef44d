package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/staking"
)

var stakeOpts struct {
	probability float64
	odds        float64
	bankroll    float64
	kelly       float64
	capFraction float64
}

func init() {
	f := stakeCmd.Flags()
	f.Float64VarP(&stakeOpts.probability, "probability", "p", 0, "True probability of the outcome")
	f.Float64Var(&stakeOpts.odds, "odds", 0, "Bookmaker decimal odds")
	f.Float64Var(&stakeOpts.bankroll, "bankroll", 0, "Bankroll (default from config)")
	f.Float64Var(&stakeOpts.kelly, "kelly", 0, "Kelly multiplier (default from config)")
	f.Float64Var(&stakeOpts.capFraction, "cap", 0, "Largest bankroll fraction per bet (default from config)")
	_ = stakeCmd.MarkFlagRequired("probability")
	_ = stakeCmd.MarkFlagRequired("odds")
}

var stakeCmd = &cobra.Command{
	Use:   "stake",
	Short: "Size a single bet with fractional Kelly",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bankroll := valueOr(stakeOpts.bankroll, cfg.Staking.Bankroll)
		kelly := valueOr(stakeOpts.kelly, cfg.Staking.KellyMultiplier)
		capFraction := valueOr(stakeOpts.capFraction, cfg.Staking.MaxStakeFraction)

		res, err := staking.Stake(stakeOpts.probability, stakeOpts.odds, bankroll, kelly, capFraction)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "edge:           %+.2f%%\n", res.EdgePercentage)
		fmt.Fprintf(out, "kelly fraction: %.4f\n", res.KellyFraction)
		fmt.Fprintf(out, "stake fraction: %.4f", res.StakeFraction)
		if res.Capped {
			fmt.Fprint(out, " (capped)")
		}
		fmt.Fprintf(out, "\nstake:          %s of %.2f\n", res.Stake.StringFixed(2), bankroll)
		if !res.HasEdge() {
			fmt.Fprintln(out, "no edge at this price")
		}
		return nil
	},
}

func valueOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
