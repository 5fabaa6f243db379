package main

import (
	"fmt"
	"os"

	"github.com/cosmos/chainops/cmd/chainops/cmd"
	"github.com/cosmos/chainops/cmd/chainops/config"

	svrcmd "github.com/cosmos/cosmos-sdk/server/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := svrcmd.Execute(rootCmd, config.EnvPrefix, config.MustGetDefaultHome()); err != nil {
		fmt.Fprintln(rootCmd.OutOrStderr(), err)
		os.Exit(1)
	}
}
