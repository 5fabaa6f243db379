package expiry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
)

const (
	// TrustingPeriodParserDigits reads every digit of the encoded period as seconds.
	TrustingPeriodParserDigits = "digits"
	// TrustingPeriodParserDuration honours the unit suffix of the encoded period.
	TrustingPeriodParserDuration = "duration"
)

// TrustingPeriodParser decodes the string form of a trusting period
// (e.g. "1209600s").
type TrustingPeriodParser func(string) (time.Duration, error)

// NewTrustingPeriodParser returns the parser registered under name.
func NewTrustingPeriodParser(name string) (TrustingPeriodParser, error) {
	switch name {
	case TrustingPeriodParserDigits:
		return ParseTrustingPeriodDigits, nil
	case TrustingPeriodParserDuration:
		return ParseTrustingPeriodDuration, nil
	default:
		return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "unknown trusting period parser %q", name)
	}
}

// ParseTrustingPeriodDigits keeps only the decimal digits of s and reads them
// as a number of seconds. Units and decimal points are dropped, so "5m" is
// 5 seconds and "1.5s" is 15 seconds.
func ParseTrustingPeriodDigits(s string) (time.Duration, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, errorsmod.Wrapf(types.ErrInvalidTrustingPeriod, "no digits in %q", s)
	}

	secs, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || secs > math.MaxInt64/int64(time.Second) {
		return 0, errorsmod.Wrapf(types.ErrInvalidTrustingPeriod, "%q overflows", s)
	}
	return time.Duration(secs) * time.Second, nil
}

// ParseTrustingPeriodDuration parses s as a Go duration string, which covers
// the protobuf JSON encoding ("1209600s", "1209600.5s").
func ParseTrustingPeriodDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errorsmod.Wrap(types.ErrInvalidTrustingPeriod, err.Error())
	}
	return d, nil
}

// FormatTrustingPeriod encodes d the way the chain CLI prints durations.
func FormatTrustingPeriod(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
