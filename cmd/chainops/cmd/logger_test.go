package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/cosmos/cosmos-sdk/client/flags"
)

func TestNewLoggerLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expDebug bool
		expInfo  bool
	}{
		{"debug", "debug", true, true},
		{"info", "info", false, true},
		{"error", "error", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetErr(&buf)

			v := viper.New()
			v.Set(flags.FlagLogLevel, tc.level)
			v.Set(flags.FlagLogNoColor, true)

			logger, err := newLogger(cmd, v)
			require.NoError(t, err)
			logger.Debug("debug line")
			logger.Info("info line")

			require.Equal(t, tc.expDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))
			require.Equal(t, tc.expInfo, bytes.Contains(buf.Bytes(), []byte("info line")))
		})
	}
}
