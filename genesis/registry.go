package genesis

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
)

const (
	// LeveragePath is the genesis object that must exist before the registry is set.
	LeveragePath = "app_state.leverage"
	// RegistryPath is the genesis field overwritten with the token registry.
	RegistryPath = LeveragePath + ".registry"

	// DefaultGenesisFile and DefaultRegistryFile are the paths used by the localnet scripts.
	DefaultGenesisFile  = "./node-data/umeetest-1/n0/config/genesis.json"
	DefaultRegistryFile = "./registered_tokens.json"

	backupSuffix = ".bak"
	indent       = "  "
)

type options struct {
	backup bool
}

// Option configures PatchRegistryFile.
type Option func(*options)

// WithBackup keeps a copy of the original genesis at <genesis>.bak.
func WithBackup() Option {
	return func(o *options) {
		o.backup = true
	}
}

// SetRegistry returns genesis with the registry document stored at
// app_state.leverage.registry. Every other field, and the order of keys, is
// left untouched. The result is indented with two spaces.
func SetRegistry(genesis, registry []byte) ([]byte, error) {
	if !gjson.ValidBytes(genesis) {
		return nil, errorsmod.Wrap(types.ErrParse, "genesis document")
	}
	if !gjson.ValidBytes(registry) {
		return nil, errorsmod.Wrap(types.ErrParse, "token registry document")
	}

	if leverage := gjson.GetBytes(genesis, LeveragePath); !leverage.IsObject() {
		return nil, errorsmod.Wrapf(types.ErrPath, "%s must be an object", LeveragePath)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, registry); err != nil {
		return nil, errorsmod.Wrap(types.ErrParse, err.Error())
	}

	patched, err := sjson.SetRawBytes(genesis, RegistryPath, compact.Bytes())
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrPath, "set %s: %s", RegistryPath, err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(patched), "", indent); err != nil {
		return nil, errorsmod.Wrap(types.ErrParse, err.Error())
	}
	out.WriteByte('\n')

	return out.Bytes(), nil
}

// PatchRegistryFile sets the registry read from registryPath into the genesis
// file at genesisPath, replacing the genesis file atomically. The genesis file
// is not modified when any step fails. A symlinked genesis path is resolved so
// the link keeps pointing at the patched file.
func PatchRegistryFile(genesisPath, registryPath string, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	target, err := filepath.EvalSymlinks(genesisPath)
	if err != nil {
		return errorsmod.Wrapf(types.ErrIO, "resolve genesis: %s", err)
	}

	genesis, err := os.ReadFile(target)
	if err != nil {
		return errorsmod.Wrapf(types.ErrIO, "read genesis: %s", err)
	}
	registry, err := os.ReadFile(registryPath)
	if err != nil {
		return errorsmod.Wrapf(types.ErrIO, "read registry: %s", err)
	}

	patched, err := SetRegistry(genesis, registry)
	if err != nil {
		return errorsmod.Wrap(err, genesisPath)
	}

	info, err := os.Stat(target)
	if err != nil {
		return errorsmod.Wrapf(types.ErrIO, "stat genesis: %s", err)
	}

	if o.backup {
		if err := writeFileAtomic(genesisPath+backupSuffix, genesis, info.Mode().Perm()); err != nil {
			return err
		}
	}

	return writeFileAtomic(target, patched, info.Mode().Perm())
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// over path once it has been flushed to disk.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errorsmod.Wrapf(types.ErrIO, "create temp file: %s", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return errorsmod.Wrapf(types.ErrIO, "write %s: %s", tmp, err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return errorsmod.Wrapf(types.ErrIO, "sync %s: %s", tmp, err)
	}
	if err = f.Close(); err != nil {
		return errorsmod.Wrapf(types.ErrIO, "close %s: %s", tmp, err)
	}
	if err = os.Chmod(tmp, perm); err != nil {
		return errorsmod.Wrapf(types.ErrIO, "chmod %s: %s", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return errorsmod.Wrapf(types.ErrIO, "rename %s: %s", tmp, err)
	}
	return nil
}
