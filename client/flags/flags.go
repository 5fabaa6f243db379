package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/ibc/expiry/cliquerier"
	"github.com/cosmos/chainops/ibc/expiry/rpcquerier"
)

// Genesis registry flags
const (
	FlagGenesis  = "genesis"
	FlagRegistry = "registry"
	FlagBackup   = "backup"
)

// Client expiry flags
const (
	FlagBinary               = "binary"
	FlagBackend              = "backend"
	FlagTimeout              = "timeout"
	FlagConcurrency          = "concurrency"
	FlagPageLimit            = "page-limit"
	FlagTrustingPeriodParser = "trusting-period-parser"
	FlagFailOnExpired        = "fail-on-expired"
)

// Default values for client expiry flags
const (
	DefaultBinary               = cliquerier.DefaultBinary
	DefaultBackend              = "cli"
	DefaultTimeout              = cliquerier.DefaultTimeout
	DefaultConcurrency          = expiry.DefaultConcurrency
	DefaultPageLimit            = rpcquerier.DefaultPageLimit
	DefaultTrustingPeriodParser = expiry.TrustingPeriodParserDigits
)

// AddGenesisFlags adds the genesis registry flags to the command
func AddGenesisFlags(cmd *cobra.Command, defaultGenesis, defaultRegistry string) {
	cmd.Flags().String(FlagGenesis, defaultGenesis, "path of the genesis file to patch")
	cmd.Flags().String(FlagRegistry, defaultRegistry, "path of the token registry JSON file")
	cmd.Flags().Bool(FlagBackup, false, "keep a copy of the original genesis file with a .bak suffix")
}

// AddExpiryFlags adds the client expiry flags to the command
func AddExpiryFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagBinary, DefaultBinary, "chain daemon used by the cli backend")
	cmd.Flags().String(FlagBackend, DefaultBackend, "query backend: cli runs the chain daemon, rpc talks to the CometBFT RPC endpoint")
	cmd.Flags().Duration(FlagTimeout, DefaultTimeout, "timeout of a single query, 0 disables it")
	cmd.Flags().Int(FlagConcurrency, DefaultConcurrency, "number of clients checked in parallel")
	cmd.Flags().Uint64(FlagPageLimit, DefaultPageLimit, "client states per page for the rpc backend")
	cmd.Flags().String(FlagTrustingPeriodParser, DefaultTrustingPeriodParser, "trusting period parser: digits (seconds, legacy) or duration (unit aware)")
	cmd.Flags().Bool(FlagFailOnExpired, false, "exit with an error when any client is expired")
}

// BindFlags binds the local flags of cmd to v so that set flags take
// precedence over the environment and config file.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	return v.BindPFlags(cmd.Flags())
}
