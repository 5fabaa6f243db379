package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cosmos/chainops/client/flags"
	"github.com/cosmos/chainops/genesis"
)

// GenesisCommand returns the genesis preparation commands.
func GenesisCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Genesis file preparation subcommands",
	}
	cmd.AddCommand(SetRegistryCommand())
	return cmd
}

// SetRegistryCommand returns the command replacing the leverage token
// registry of a genesis file.
func SetRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-registry [genesis] [registry]",
		Short: "Replace app_state.leverage.registry of a genesis file with a token registry",
		Long: `Replace app_state.leverage.registry of a genesis file with the contents of a
token registry JSON file. The genesis file is rewritten in place with two-space
indentation. Positional arguments take precedence over --genesis and --registry.`,
		Example: "chainops genesis set-registry ./genesis.json ./registered_tokens.json --backup",
		Args:    cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, v, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.GenesisFile = args[0]
			}
			if len(args) > 1 {
				cfg.RegistryFile = args[1]
			}
			if err := cfg.ValidateGenesis(); err != nil {
				return err
			}

			logger, err := newLogger(cmd, v)
			if err != nil {
				return err
			}
			logger = logger.With("module", "genesis")

			var opts []genesis.Option
			if cfg.Backup {
				opts = append(opts, genesis.WithBackup())
			}
			if err := genesis.PatchRegistryFile(cfg.GenesisFile, cfg.RegistryFile, opts...); err != nil {
				return err
			}

			logger.Info("token registry set", "genesis", cfg.GenesisFile, "registry", cfg.RegistryFile, "backup", cfg.Backup)
			return nil
		},
	}

	flags.AddGenesisFlags(cmd, genesis.DefaultGenesisFile, genesis.DefaultRegistryFile)
	return cmd
}
