package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cosmos/chainops/client/flags"
	"github.com/cosmos/chainops/cmd/chainops/config"
	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/ibc/expiry/cliquerier"
	"github.com/cosmos/chainops/ibc/expiry/rpcquerier"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
)

// IBCCommand returns the IBC inspection commands.
func IBCCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ibc",
		Short: "IBC inspection subcommands",
	}
	cmd.AddCommand(ClientExpiryCommand())
	return cmd
}

// ClientExpiryCommand returns the command reporting which light clients of a
// node have outlived their trusting period.
func ClientExpiryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client-expiry [node]",
		Short: "Report IBC light clients whose trusting period has elapsed",
		Long: `Query every IBC light client of a node and compare the age of its latest
consensus state with its trusting period. The chain time is the block time at
the height the connections query was served at.`,
		Example: "chainops ibc client-expiry tcp://localhost:26657 --backend rpc --concurrency 8",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateReporter(); err != nil {
				return err
			}

			querier, err := newQuerier(cfg, args[0])
			if err != nil {
				return err
			}
			parser, err := expiry.NewTrustingPeriodParser(cfg.TrustingPeriodParser)
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd, v)
			if err != nil {
				return err
			}

			reporter := expiry.NewReporter(querier, logger,
				expiry.WithConcurrency(cfg.Concurrency),
				expiry.WithTrustingPeriodParser(parser),
			)
			report, err := reporter.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := expiry.WriteReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			if cfg.FailOnExpired && !report.Healthy() {
				return errorsmod.Wrapf(types.ErrClientsExpired, "%d expired, %d failed",
					len(report.Expired()), len(report.Failed()))
			}
			return nil
		},
	}

	flags.AddExpiryFlags(cmd)
	return cmd
}

func newQuerier(cfg config.Config, node string) (expiry.Querier, error) {
	switch cfg.Backend {
	case config.BackendRPC:
		return rpcquerier.New(node,
			rpcquerier.WithPageLimit(cfg.PageLimit),
			rpcquerier.WithTimeout(cfg.Timeout),
		)
	default:
		return cliquerier.New(node,
			cliquerier.WithBinary(cfg.Binary),
			cliquerier.WithTimeout(cfg.Timeout),
		), nil
	}
}
