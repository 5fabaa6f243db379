package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	chainopsclient "github.com/cosmos/chainops/client"
	"github.com/cosmos/chainops/cmd/chainops/config"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log/v2"

	"github.com/cosmos/cosmos-sdk/client/flags"
)

// NewRootCmd creates the chainops root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Chain operator tooling: genesis preparation and IBC light client health",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.AddCommand(
		GenesisCommand(),
		IBCCommand(),
	)
	return rootCmd
}

// loadConfig resolves the command settings from flags, environment and the
// optional config file under --home.
func loadConfig(cmd *cobra.Command) (config.Config, *viper.Viper, error) {
	v, err := chainopsclient.InitConfig(cmd, config.EnvPrefix)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, v, nil
}

// newLogger builds the command logger from the global log flags. Logs go to
// stderr so stdout only carries command output.
func newLogger(cmd *cobra.Command, v *viper.Viper) (log.Logger, error) {
	var opts []log.Option
	if level := v.GetString(flags.FlagLogLevel); level != "" {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "%s: %s", flags.FlagLogLevel, err)
		}
		opts = append(opts, log.LevelOption(lvl))
	}
	if v.GetString(flags.FlagLogFormat) == flags.OutputFormatJSON {
		opts = append(opts, log.OutputJSONOption())
	}
	if v.GetBool(flags.FlagLogNoColor) {
		opts = append(opts, log.ColorOption(false))
	}
	return log.NewLogger(cmd.ErrOrStderr(), opts...), nil
}
