package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/apollodao/cw-dex-sub000/internal/config"
	"github.com/apollodao/cw-dex-sub000/internal/logging"
	"github.com/apollodao/cw-dex-sub000/internal/native"
	"github.com/apollodao/cw-dex-sub000/internal/service"
	"github.com/apollodao/cw-dex-sub000/pkg/amm"
	"github.com/apollodao/cw-dex-sub000/pkg/pool"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand once the root pre-run loaded
// the pools file.
type app struct {
	poolsFile string
	decimals  int32

	ledger *native.Ledger
	svc    *service.PoolService
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "poolctl",
		Short:         "Simulate pool operations against a native pools file",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&a.poolsFile, "pools", "", "native pools file (default $NATIVE_POOLS_FILE)")
	root.PersistentFlags().Int32Var(&a.decimals, "decimals", -1, "render amounts with this many decimals")
	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		return a.load()
	}

	root.AddCommand(
		a.poolsCmd(),
		a.ampCmd(),
		a.provideCmd(),
		a.withdrawCmd(),
		a.swapCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.OfflineFromEnv()
	if err != nil {
		return err
	}
	if a.poolsFile == "" {
		a.poolsFile = cfg.NativePoolsFile
	}
	if a.poolsFile == "" {
		a.ledger = native.Empty()
	} else if a.ledger, err = native.Load(a.poolsFile); err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	a.svc = service.NewPoolService(logger, nil, a.ledger, service.Settings{
		PairFeeBps:       cfg.PairFeeBps,
		AmpPrecision:     1,
		MinimumLiquidity: cfg.MinimumLiquidity,
	})
	return nil
}

func (a *app) poolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List the pools of the file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			for _, id := range a.ledger.IDs() {
				p, err := a.ledger.NativePool(ctx, id)
				if err != nil {
					return err
				}
				ident := p.Identity()
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", id, ident.Curve, a.formatAssets(p.Liquidity().Assets))
			}
			return nil
		},
	}
}

func (a *app) ampCmd() *cobra.Command {
	var now uint64
	cmd := &cobra.Command{
		Use:   "amp <init_amp> <init_amp_time> <next_amp> <next_amp_time>",
		Short: "Print the amplification of a ramp at --now",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var vals [4]uint64
			for i, arg := range args {
				v, err := strconv.ParseUint(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				vals[i] = v
			}
			params := amm.AmplificationParams{InitAmp: vals[0], InitAmpTime: vals[1], NextAmp: vals[2], NextAmpTime: vals[3]}
			amp, err := params.CurrentAmp(now)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), amp)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&now, "now", 0, "unix time to evaluate the ramp at")
	return cmd
}

func (a *app) provideCmd() *cobra.Command {
	var minShares string
	cmd := &cobra.Command{
		Use:   "provide <pool_id> <asset:amount>[,<asset:amount>...]",
		Short: "Simulate a deposit and print the minted shares",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			deposits, err := amm.ParseAssets(args[1])
			if err != nil {
				return err
			}
			if minShares != "" {
				return a.printInstructions(cmd, func(ctx context.Context) ([]pool.Instruction, error) {
					floor, err := amm.ParseAmount(minShares)
					if err != nil {
						return nil, err
					}
					return a.svc.Provide(ctx, lp, deposits, &floor)
				})
			}
			shares, err := a.svc.SimulateProvide(cmd.Context(), lp, deposits)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.formatAsset(shares))
			return nil
		},
	}
	cmd.Flags().StringVar(&minShares, "min-shares", "", "build instructions guarded by this share floor")
	return cmd
}

func (a *app) withdrawCmd() *cobra.Command {
	var imbalanced string
	cmd := &cobra.Command{
		Use:   "withdraw <pool_id> <shares>",
		Short: "Simulate burning shares, or with --assets the shares burned for exact outputs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			shares, err := amm.ParseAmount(args[1])
			if err != nil {
				return err
			}
			if imbalanced != "" {
				withdrawals, err := amm.ParseAssets(imbalanced)
				if err != nil {
					return err
				}
				burn, err := a.svc.SimulateWithdrawImbalanced(cmd.Context(), lp, withdrawals, &shares)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.formatAsset(burn))
				return nil
			}
			assets, err := a.svc.SimulateWithdraw(cmd.Context(), lp, &shares)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.formatAssets(assets))
			return nil
		},
	}
	cmd.Flags().StringVar(&imbalanced, "assets", "", "exact outputs to withdraw; <shares> is then the balance available to burn")
	return cmd
}

func (a *app) swapCmd() *cobra.Command {
	var minOut string
	cmd := &cobra.Command{
		Use:   "swap <pool_id> <offer_asset:amount> <ask_asset>",
		Short: "Simulate a swap and print the return",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			offer, err := amm.ParseAsset(args[1])
			if err != nil {
				return err
			}
			ask, err := amm.ParseAssetIdentity(args[2])
			if err != nil {
				return err
			}
			if minOut != "" {
				return a.printInstructions(cmd, func(ctx context.Context) ([]pool.Instruction, error) {
					floor, err := amm.ParseAmount(minOut)
					if err != nil {
						return nil, err
					}
					return a.svc.Swap(ctx, lp, offer, ask, &floor)
				})
			}
			out, err := a.svc.SimulateSwap(cmd.Context(), lp, offer, ask)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.formatAsset(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&minOut, "min-out", "", "build instructions guarded by this minimum return")
	return cmd
}

func (a *app) printInstructions(cmd *cobra.Command, build func(context.Context) ([]pool.Instruction, error)) error {
	ins, err := build(cmd.Context())
	if err != nil {
		return err
	}
	for _, in := range ins {
		writeInstruction(cmd.OutOrStdout(), in)
	}
	return nil
}

func writeInstruction(w io.Writer, in pool.Instruction) {
	fmt.Fprintf(w, "%s pool=%s", in.Action, in.Pool)
	for _, s := range in.Send {
		fmt.Fprintf(w, " send=%s", s)
	}
	for _, e := range in.Expect {
		fmt.Fprintf(w, " expect=%s", e)
	}
	for _, m := range in.MinOut {
		fmt.Fprintf(w, " min_out=%s", m)
	}
	fmt.Fprintln(w)
}

func parsePoolID(s string) (amm.AssetIdentity, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return amm.AssetIdentity{}, fmt.Errorf("pool id %q: %w", s, err)
	}
	return pool.NativeShareDenom(id), nil
}

func (a *app) formatAsset(asset amm.Asset) string {
	if a.decimals < 0 {
		return asset.String()
	}
	return formatUnits(&asset.Amount, a.decimals) + asset.ID.String()
}

func (a *app) formatAssets(assets []amm.Asset) string {
	var out string
	for i, asset := range assets {
		if i > 0 {
			out += ","
		}
		out += a.formatAsset(asset)
	}
	return out
}

// formatUnits renders v / 10^decimals with exactly decimals fraction digits.
func formatUnits(v *uint256.Int, decimals int32) string {
	return decimal.NewFromBigInt(v.ToBig(), -decimals).StringFixed(decimals)
}
