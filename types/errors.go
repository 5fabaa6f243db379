package types

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace of every error raised by chainops.
const ModuleName = "chainops"

// errors
var (
	// ErrParse is returned when a file or command output is not valid JSON.
	ErrParse = errorsmod.Register(ModuleName, 2, "malformed json")

	// ErrLookup is returned when an expected field is missing from a JSON document.
	ErrLookup = errorsmod.Register(ModuleName, 3, "field not found")

	// ErrSubprocess is returned when the external chain CLI fails or cannot be started.
	ErrSubprocess = errorsmod.Register(ModuleName, 4, "external command failed")

	// ErrIO is returned on file read or write failures.
	ErrIO = errorsmod.Register(ModuleName, 5, "file i/o failure")

	// ErrPath is returned when the genesis document lacks the structure the patch expects.
	ErrPath = errorsmod.Register(ModuleName, 6, "invalid genesis path")

	ErrInvalidHeight         = errorsmod.Register(ModuleName, 7, "invalid height")
	ErrInvalidTrustingPeriod = errorsmod.Register(ModuleName, 8, "invalid trusting period")
	ErrInvalidTimestamp      = errorsmod.Register(ModuleName, 9, "invalid timestamp")

	// ErrUnsupportedClient is returned for light clients whose states cannot be decoded.
	ErrUnsupportedClient = errorsmod.Register(ModuleName, 10, "unsupported light client type")

	ErrInvalidConfig = errorsmod.Register(ModuleName, 11, "invalid configuration")

	// ErrClientsExpired is returned by the reporter command when asked to fail on expired clients.
	ErrClientsExpired = errorsmod.Register(ModuleName, 12, "light clients expired")
)
