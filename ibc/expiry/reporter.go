package expiry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	chainopstrace "github.com/cosmos/chainops/trace"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log/v2"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
)

// DefaultConcurrency is the number of consensus states fetched in parallel.
const DefaultConcurrency = 4

// Result is the check outcome for one light client.
type Result struct {
	Client         ClientState
	ConsensusTime  time.Time
	Elapsed        time.Duration
	TrustingPeriod time.Duration
	Status         Status
	Err            error
}

// Report is the outcome of a full run against a node.
type Report struct {
	Node            string
	ChainTime       time.Time
	ReferenceHeight clienttypes.Height
	ConnectionCount int
	Results         []Result
}

// Count returns the number of results with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Expired returns the results of clients past their trusting period.
func (r *Report) Expired() []Result {
	return r.filter(StatusExpired)
}

// Failed returns the results of clients that could not be checked.
func (r *Report) Failed() []Result {
	return r.filter(StatusFailed)
}

// Healthy reports whether every client is within its trusting period.
func (r *Report) Healthy() bool {
	return r.Count(StatusExpired) == 0 && r.Count(StatusFailed) == 0
}

func (r *Report) filter(status Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithConcurrency bounds the number of in-flight consensus state queries.
func WithConcurrency(n int) ReporterOption {
	return func(r *Reporter) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithTrustingPeriodParser replaces the default digits-only parser.
func WithTrustingPeriodParser(p TrustingPeriodParser) ReporterOption {
	return func(r *Reporter) {
		if p != nil {
			r.parseTrustingPeriod = p
		}
	}
}

// Reporter checks every light client known to a node against the node's
// current block time.
type Reporter struct {
	querier             Querier
	parseTrustingPeriod TrustingPeriodParser
	concurrency         int
	logger              log.Logger

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	instruments    instruments
}

// NewReporter returns a Reporter reading from q.
func NewReporter(q Querier, logger log.Logger, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		querier:             q,
		parseTrustingPeriod: ParseTrustingPeriodDigits,
		concurrency:         DefaultConcurrency,
		logger:              logger.With("module", "ibc/expiry"),
	}
	for _, opt := range opts {
		opt(r)
	}

	inst, err := newInstruments(r.tracerProvider, r.meterProvider)
	if err != nil {
		r.logger.Warn("metrics disabled", "err", err)
		inst = noopInstruments(r.tracerProvider)
	}
	r.instruments = inst
	return r
}

// Run builds the report for node. Failing to list clients or to determine the
// chain time aborts the run; failures on individual clients are recorded in
// their results.
func (r *Reporter) Run(ctx context.Context, node string) (_ *Report, err error) {
	ctx, span := chainopstrace.StartSpan(ctx, r.instruments.tracer, "Run", attribute.String("node", node))
	defer func() { chainopstrace.EndSpan(span, err) }()

	clients, err := CollectClientStates(ctx, r.querier)
	if err != nil {
		return nil, errorsmod.Wrap(err, "list client states")
	}
	r.logger.Info("collected client states", "count", len(clients))

	conns, err := r.querier.Connections(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "query connections")
	}
	if conns.Height.RevisionHeight == 0 {
		return nil, errorsmod.Wrap(types.ErrLookup, "connections response carries no height")
	}
	if conns.Count > 1 {
		r.logger.Debug("using query height shared by all connections", "connections", conns.Count, "height", conns.Height.String())
	}

	chainTime, err := r.querier.BlockTime(ctx, conns.Height.RevisionHeight)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "query block %d", conns.Height.RevisionHeight)
	}

	results := make([]Result, len(clients))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, client := range clients {
		g.Go(func() error {
			results[i] = r.check(gctx, chainTime, client)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Node:            node,
		ChainTime:       chainTime,
		ReferenceHeight: conns.Height,
		ConnectionCount: conns.Count,
		Results:         results,
	}, nil
}

func (r *Reporter) check(ctx context.Context, chainTime time.Time, client ClientState) (res Result) {
	ctx, span := chainopstrace.StartSpan(ctx, r.instruments.tracer, "CheckClient", attribute.String("client_id", client.ClientID))
	defer func() {
		status := attribute.String("status", res.Status.String())
		span.SetAttributes(status)
		r.instruments.checked.Add(ctx, 1, metric.WithAttributes(status))
		if res.Status != StatusFailed {
			r.instruments.elapsed.Record(ctx, res.Elapsed.Seconds(), metric.WithAttributes(attribute.String("client_id", client.ClientID)))
		}
		chainopstrace.EndSpan(span, res.Err)
	}()

	res = Result{Client: client, Status: StatusFailed}
	logger := r.logger.With("client_id", client.ClientID)

	if client.Err != nil {
		res.Err = client.Err
		logger.Error("skipping undecodable client state", "err", client.Err)
		return res
	}

	trustingPeriod, err := r.parseTrustingPeriod(client.TrustingPeriod)
	if err != nil {
		res.Err = err
		logger.Error("invalid trusting period", "trusting_period", client.TrustingPeriod, "err", err)
		return res
	}
	if exact, err := ParseTrustingPeriodDuration(client.TrustingPeriod); err == nil && exact != trustingPeriod {
		logger.Warn("trusting period unit not honoured", "trusting_period", client.TrustingPeriod, "used", trustingPeriod, "exact", exact)
	}
	res.TrustingPeriod = trustingPeriod

	consensusTime, err := r.querier.ConsensusTimestamp(ctx, client.ClientID, client.LatestHeight)
	if err != nil {
		res.Err = err
		logger.Error("failed to query consensus state", "height", client.LatestHeight.String(), "err", err)
		return res
	}
	res.ConsensusTime = consensusTime
	res.Elapsed, res.Status = Classify(chainTime, consensusTime, trustingPeriod)

	if res.Status == StatusExpired {
		logger.Info("trusting period exceeded", "elapsed", res.Elapsed, "trusting_period", trustingPeriod)
	}
	return res
}
