package cliquerier

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
)

const (
	// DefaultBinary is the chain daemon used to run queries.
	DefaultBinary = "umeed"
	// DefaultTimeout bounds every query.
	DefaultTimeout = 30 * time.Second
)

// paths to the block header time; newer CLIs drop the "block" wrapper
var blockTimePaths = []string{"block.header.time", "header.time"}

var _ expiry.Querier = (*Querier)(nil)

// Option configures a Querier.
type Option func(*Querier)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(q *Querier) {
		q.runner = r
	}
}

// WithBinary sets the chain daemon executable.
func WithBinary(binary string) Option {
	return func(q *Querier) {
		q.binary = binary
	}
}

// WithTimeout bounds each query. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Querier) {
		q.timeout = d
	}
}

// Querier implements expiry.Querier by running the chain CLI against a node
// and reading its JSON output.
type Querier struct {
	runner  Runner
	binary  string
	node    string
	timeout time.Duration
}

// New returns a Querier for the node endpoint understood by the chain CLI
// (e.g. tcp://localhost:26657).
func New(node string, opts ...Option) *Querier {
	q := &Querier{
		runner:  ExecRunner{},
		binary:  DefaultBinary,
		node:    node,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ClientStates runs `q ibc client states` for the given page.
func (q *Querier) ClientStates(ctx context.Context, page uint64) (expiry.ClientStatesPage, error) {
	res, err := q.query(ctx,
		"q", "ibc", "client", "states",
		"--output", "json",
		"--node", q.node,
		"--page", strconv.FormatUint(page, 10),
	)
	if err != nil {
		return expiry.ClientStatesPage{}, err
	}

	list := res.Get("client_states")
	if !list.IsArray() {
		return expiry.ClientStatesPage{}, errorsmod.Wrap(types.ErrLookup, "client_states")
	}

	var p expiry.ClientStatesPage
	for _, item := range list.Array() {
		p.States = append(p.States, parseClientState(item))
	}

	p.Pagination.NextKey = []byte(res.Get("pagination.next_key").String())
	if total := res.Get("pagination.total").String(); total != "" {
		p.Pagination.Total, err = parseUint(types.ErrParse, "pagination.total", total)
		if err != nil {
			return expiry.ClientStatesPage{}, err
		}
	}
	return p, nil
}

// Connections runs `q ibc connection connections`. Only the query height and
// the number of connections are read.
func (q *Querier) Connections(ctx context.Context) (expiry.ConnectionsInfo, error) {
	res, err := q.query(ctx,
		"q", "ibc", "connection", "connections",
		"--output", "json",
		"--node", q.node,
	)
	if err != nil {
		return expiry.ConnectionsInfo{}, err
	}

	height, err := parseHeight(res.Get("height"))
	if err != nil {
		return expiry.ConnectionsInfo{}, errorsmod.Wrap(err, "connections")
	}
	return expiry.ConnectionsInfo{
		Height: height,
		Count:  int(res.Get("connections.#").Int()),
	}, nil
}

// BlockTime runs `q block <height>`.
func (q *Querier) BlockTime(ctx context.Context, height uint64) (time.Time, error) {
	res, err := q.query(ctx, "q", "block", strconv.FormatUint(height, 10), "--node", q.node)
	if err != nil {
		return time.Time{}, err
	}

	for _, path := range blockTimePaths {
		if t := res.Get(path); t.Exists() {
			return parseTime(path, t.String())
		}
	}
	return time.Time{}, errorsmod.Wrapf(types.ErrLookup, "block %d header time", height)
}

// ConsensusTimestamp runs `q ibc client consensus-state <client> <height>`.
func (q *Querier) ConsensusTimestamp(ctx context.Context, clientID string, height clienttypes.Height) (time.Time, error) {
	res, err := q.query(ctx,
		"q", "ibc", "client", "consensus-state", clientID, height.String(),
		"--node", q.node,
		"--output", "json",
	)
	if err != nil {
		return time.Time{}, err
	}

	ts, err := lookup(res, "consensus_state.timestamp")
	if err != nil {
		return time.Time{}, err
	}
	return parseTime("consensus_state.timestamp", ts.String())
}

func (q *Querier) query(ctx context.Context, args ...string) (gjson.Result, error) {
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	out, err := q.runner.Run(ctx, q.binary, args...)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(out) {
		return gjson.Result{}, errorsmod.Wrapf(types.ErrParse, "output of %s %s", q.binary, strings.Join(args, " "))
	}
	return gjson.ParseBytes(out), nil
}

// parseClientState decodes one entry of the client_states list. Decoding
// errors are kept on the entry.
func parseClientState(item gjson.Result) expiry.ClientState {
	cs := expiry.ClientState{ClientID: item.Get("client_id").String()}
	if cs.ClientID == "" {
		cs.Err = errorsmod.Wrap(types.ErrLookup, "client_id")
		return cs
	}

	state, err := lookup(item, "client_state")
	if err != nil {
		cs.Err = err
		return cs
	}
	chainID, err := lookup(state, "chain_id")
	if err != nil {
		cs.Err = err
		return cs
	}
	trustingPeriod, err := lookup(state, "trusting_period")
	if err != nil {
		cs.Err = err
		return cs
	}
	height, err := parseHeight(state.Get("latest_height"))
	if err != nil {
		cs.Err = err
		return cs
	}

	cs.ChainID = chainID.String()
	cs.TrustingPeriod = trustingPeriod.String()
	cs.LatestHeight = height
	return cs
}

// parseHeight reads a {revision_number, revision_height} object. An omitted
// revision number is zero.
func parseHeight(h gjson.Result) (clienttypes.Height, error) {
	rh, err := lookup(h, "revision_height")
	if err != nil {
		return clienttypes.Height{}, err
	}
	revisionHeight, err := parseUint(types.ErrInvalidHeight, "revision_height", rh.String())
	if err != nil {
		return clienttypes.Height{}, err
	}

	var revisionNumber uint64
	if rn := h.Get("revision_number"); rn.Exists() {
		if revisionNumber, err = parseUint(types.ErrInvalidHeight, "revision_number", rn.String()); err != nil {
			return clienttypes.Height{}, err
		}
	}
	return clienttypes.NewHeight(revisionNumber, revisionHeight), nil
}

func lookup(res gjson.Result, path string) (gjson.Result, error) {
	v := res.Get(path)
	if !v.Exists() {
		return gjson.Result{}, errorsmod.Wrap(types.ErrLookup, path)
	}
	return v, nil
}

func parseUint(kind *errorsmod.Error, field, s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(kind, "%s: %q", field, s)
	}
	return n, nil
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errorsmod.Wrapf(types.ErrInvalidTimestamp, "%s: %q", field, s)
	}
	return t, nil
}
