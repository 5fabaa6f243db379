package expiry

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
)

var (
	expiredColor = color.New(color.FgRed, color.Bold)
	failedColor  = color.New(color.FgRed)
	withinColor  = color.New(color.FgGreen)
)

// WriteReport prints report as plain text, one block per client followed by
// a summary line.
func WriteReport(w io.Writer, report *Report) error {
	pw := &printer{w: w}

	pw.printf("Current block time %s and number %d\n\n", formatTime(report.ChainTime), report.ReferenceHeight.RevisionHeight)

	for _, res := range report.Results {
		c := res.Client
		pw.printf("%s\n", c.ClientID)
		pw.printf("client_id: %s\n", c.ClientID)
		if c.Err == nil {
			pw.printf("chain_id: %s\n", c.ChainID)
			pw.printf("revision: %d\n", c.LatestHeight.RevisionNumber)
			pw.printf("revision height: %d\n", c.LatestHeight.RevisionHeight)
			pw.printf("trusting period: %s\n", c.TrustingPeriod)
		}

		switch res.Status {
		case StatusExpired, StatusWithinPeriod:
			pw.printf("RPC endpoint block time: %s\n", formatTime(report.ChainTime))
			pw.printf("consensus block time: %s\n", formatTime(res.ConsensusTime))
		}

		switch res.Status {
		case StatusExpired:
			pw.colorf(expiredColor, "ERROR: Trusting period %s exceeded at %s seconds\n",
				formatSeconds(res.TrustingPeriod), formatSeconds(res.Elapsed))
		case StatusWithinPeriod:
			pw.colorf(withinColor, "%s within trusting period %s with %s\n",
				c.ClientID, formatSeconds(res.TrustingPeriod), formatSeconds(res.Elapsed))
		default:
			pw.colorf(failedColor, "FAILED: %v\n", res.Err)
		}
		pw.printf("\n")
	}

	pw.printf("%d clients: %d expired, %d within trusting period, %d failed\n",
		len(report.Results), report.Count(StatusExpired), report.Count(StatusWithinPeriod), report.Count(StatusFailed))

	return pw.err
}

// printer keeps the first write error so rendering code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) colorf(c *color.Color, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = c.Fprintf(p.w, format, args...)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
