package client

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/chainops/client/flags"

	sdkflags "github.com/cosmos/cosmos-sdk/client/flags"
)

// ConfigFileName is the name of the optional config file under <home>/config.
const ConfigFileName = "chainops.toml"

// InitConfig builds the settings of cmd from, in order of precedence, set
// flags, CHAINOPS_* environment variables, <home>/config/chainops.toml and
// flag defaults.
func InitConfig(cmd *cobra.Command, envPrefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	home, err := cmd.Flags().GetString(sdkflags.FlagHome)
	if err == nil && home != "" {
		configFile := filepath.Join(home, "config", ConfigFileName)
		switch _, err := os.Stat(configFile); {
		case err == nil:
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	if err := flags.BindFlags(cmd, v); err != nil {
		return nil, err
	}
	return v, nil
}
