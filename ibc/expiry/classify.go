package expiry

import "time"

// Status is the outcome of checking a single light client.
type Status int

const (
	StatusWithinPeriod Status = iota
	StatusExpired
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWithinPeriod:
		return "WITHIN-PERIOD"
	case StatusExpired:
		return "EXPIRED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Classify compares the time elapsed since the client's consensus state with
// its trusting period. A client whose elapsed time equals the trusting period
// is still within it. Elapsed is negative when the consensus time is ahead of
// the chain time.
func Classify(chainTime, consensusTime time.Time, trustingPeriod time.Duration) (time.Duration, Status) {
	elapsed := chainTime.Sub(consensusTime)
	if elapsed > trustingPeriod {
		return elapsed, StatusExpired
	}
	return elapsed, StatusWithinPeriod
}
