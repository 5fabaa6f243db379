package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/cosmos/chainops/client/flags"
	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
)

const (
	// AppName is the binary name and the default home directory suffix.
	AppName = "chainops"
	// EnvPrefix is the prefix of environment variables overriding flags.
	EnvPrefix = "CHAINOPS"

	BackendCLI = "cli"
	BackendRPC = "rpc"
)

// Config holds the resolved settings of both command groups.
type Config struct {
	// client expiry reporter
	Binary               string
	Backend              string
	Timeout              time.Duration
	Concurrency          int
	PageLimit            uint64
	TrustingPeriodParser string
	FailOnExpired        bool

	// genesis registry patcher
	GenesisFile  string
	RegistryFile string
	Backup       bool
}

// FromViper reads the configuration from v, where flags, environment and the
// config file have already been merged.
func FromViper(v *viper.Viper) (Config, error) {
	timeout, err := parseTimeout(v.Get(flags.FlagTimeout))
	if err != nil {
		return Config{}, errorsmod.Wrapf(types.ErrInvalidConfig, "%s: %s", flags.FlagTimeout, err)
	}
	concurrency, err := cast.ToIntE(v.Get(flags.FlagConcurrency))
	if err != nil {
		return Config{}, errorsmod.Wrapf(types.ErrInvalidConfig, "%s: %s", flags.FlagConcurrency, err)
	}
	pageLimit, err := cast.ToUint64E(v.Get(flags.FlagPageLimit))
	if err != nil {
		return Config{}, errorsmod.Wrapf(types.ErrInvalidConfig, "%s: %s", flags.FlagPageLimit, err)
	}

	cfg := Config{
		Binary:               v.GetString(flags.FlagBinary),
		Backend:              v.GetString(flags.FlagBackend),
		Timeout:              timeout,
		Concurrency:          concurrency,
		PageLimit:            pageLimit,
		TrustingPeriodParser: v.GetString(flags.FlagTrustingPeriodParser),
		FailOnExpired:        v.GetBool(flags.FlagFailOnExpired),
		GenesisFile:          v.GetString(flags.FlagGenesis),
		RegistryFile:         v.GetString(flags.FlagRegistry),
		Backup:               v.GetBool(flags.FlagBackup),
	}
	return cfg, nil
}

// parseTimeout reads a duration such as "30s". Bare numbers other than 0 are
// rejected since cast would read them as nanoseconds.
func parseTimeout(raw any) (time.Duration, error) {
	if d, ok := raw.(time.Duration); ok {
		return d, nil
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}
	if strings.Trim(s, "0123456789.") == "" {
		return 0, fmt.Errorf("duration %q needs a unit suffix such as s or m", s)
	}
	return cast.ToDurationE(s)
}

// Validate checks the settings of both command groups.
func (c Config) Validate() error {
	if err := c.ValidateGenesis(); err != nil {
		return err
	}
	return c.ValidateReporter()
}

// ValidateReporter checks the settings used by the client expiry reporter.
func (c Config) ValidateReporter() error {
	switch c.Backend {
	case BackendCLI:
		if c.Binary == "" {
			return errorsmod.Wrap(types.ErrInvalidConfig, "binary must be set for the cli backend")
		}
	case BackendRPC:
		if c.PageLimit == 0 {
			return errorsmod.Wrap(types.ErrInvalidConfig, "page limit must be positive")
		}
	default:
		return errorsmod.Wrapf(types.ErrInvalidConfig, "unknown backend %q", c.Backend)
	}
	if c.Timeout < 0 {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "negative timeout %s", c.Timeout)
	}
	if c.Concurrency < 1 {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if _, err := expiry.NewTrustingPeriodParser(c.TrustingPeriodParser); err != nil {
		return err
	}
	return nil
}

// ValidateGenesis checks the settings used by the genesis registry patcher.
func (c Config) ValidateGenesis() error {
	if c.GenesisFile == "" {
		return errorsmod.Wrap(types.ErrInvalidConfig, "genesis file must be set")
	}
	if c.RegistryFile == "" {
		return errorsmod.Wrap(types.ErrInvalidConfig, "registry file must be set")
	}
	return nil
}

// MustGetDefaultHome returns ~/.chainops.
func MustGetDefaultHome() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(userHome, "."+AppName)
}
