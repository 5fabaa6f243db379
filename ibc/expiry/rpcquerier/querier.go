package rpcquerier

import (
	"context"
	"math"
	"time"

	gogoproto "github.com/cosmos/gogoproto/proto"

	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/types"

	errorsmod "cosmossdk.io/errors"

	"github.com/cosmos/cosmos-sdk/client"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	ibctm "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"
)

const (
	ClientStatesPath   = "/ibc.core.client.v1.Query/ClientStates"
	ConsensusStatePath = "/ibc.core.client.v1.Query/ConsensusState"
	ConnectionsPath    = "/ibc.core.connection.v1.Query/Connections"

	// DefaultPageLimit is the number of client states requested per page.
	DefaultPageLimit = 100
)

var (
	tendermintClientStateURL    = sdk.MsgTypeURL(&ibctm.ClientState{})
	tendermintConsensusStateURL = sdk.MsgTypeURL(&ibctm.ConsensusState{})
)

// Node is the subset of a CometBFT RPC endpoint used by the Querier.
type Node interface {
	// ABCIQuery runs a gRPC query path through the ABCI query endpoint and
	// returns the raw response bytes.
	ABCIQuery(ctx context.Context, path string, data []byte) ([]byte, error)
	// BlockTime returns the header time of the block at height.
	BlockTime(ctx context.Context, height int64) (time.Time, error)
}

var _ Node = rpcNode{}

// rpcNode serves Node through an SDK client context.
type rpcNode struct {
	clientCtx client.Context
}

func (n rpcNode) ABCIQuery(ctx context.Context, path string, data []byte) ([]byte, error) {
	bz, _, err := n.clientCtx.WithCmdContext(ctx).QueryWithData(path, data)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrSubprocess, "abci query %s: %s", path, err)
	}
	return bz, nil
}

func (n rpcNode) BlockTime(ctx context.Context, height int64) (time.Time, error) {
	res, err := n.clientCtx.Client.Block(ctx, &height)
	if err != nil {
		return time.Time{}, errorsmod.Wrapf(types.ErrSubprocess, "block %d: %s", height, err)
	}
	if res == nil || res.Block == nil {
		return time.Time{}, errorsmod.Wrapf(types.ErrLookup, "block %d", height)
	}
	return res.Block.Header.Time, nil
}

var _ expiry.Querier = (*Querier)(nil)

// Option configures a Querier.
type Option func(*Querier)

// WithPageLimit sets the number of client states requested per page.
func WithPageLimit(limit uint64) Option {
	return func(q *Querier) {
		if limit > 0 {
			q.pageLimit = limit
		}
	}
}

// WithTimeout bounds each query. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Querier) {
		q.timeout = d
	}
}

// Querier implements expiry.Querier against the CometBFT RPC endpoint of a
// node, decoding 07-tendermint client and consensus states.
type Querier struct {
	node      Node
	pageLimit uint64
	timeout   time.Duration
}

// New connects to the CometBFT RPC endpoint at nodeURI.
func New(nodeURI string, opts ...Option) (*Querier, error) {
	rpcClient, err := client.NewClientFromNode(nodeURI)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidConfig, "node %s: %s", nodeURI, err)
	}
	return NewWithNode(rpcNode{clientCtx: client.Context{}.WithClient(rpcClient).WithNodeURI(nodeURI)}, opts...), nil
}

// NewWithNode returns a Querier reading from node.
func NewWithNode(node Node, opts ...Option) *Querier {
	q := &Querier{
		node:      node,
		pageLimit: DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// ClientStates requests the given page using offset pagination so the total
// is reported on every page.
func (q *Querier) ClientStates(ctx context.Context, page uint64) (expiry.ClientStatesPage, error) {
	if page == 0 {
		return expiry.ClientStatesPage{}, errorsmod.Wrap(types.ErrInvalidConfig, "pages start at 1")
	}

	req := &clienttypes.QueryClientStatesRequest{
		Pagination: &query.PageRequest{
			Offset:     (page - 1) * q.pageLimit,
			Limit:      q.pageLimit,
			CountTotal: true,
		},
	}
	var res clienttypes.QueryClientStatesResponse
	if err := q.query(ctx, ClientStatesPath, req, &res); err != nil {
		return expiry.ClientStatesPage{}, err
	}

	var p expiry.ClientStatesPage
	for _, ics := range res.ClientStates {
		p.States = append(p.States, decodeClientState(ics))
	}
	if res.Pagination != nil {
		p.Pagination = expiry.PageResponse{
			NextKey: res.Pagination.NextKey,
			Total:   res.Pagination.Total,
		}
	}
	return p, nil
}

// Connections returns the height the first page of connections was served at.
func (q *Querier) Connections(ctx context.Context) (expiry.ConnectionsInfo, error) {
	req := &connectiontypes.QueryConnectionsRequest{
		Pagination: &query.PageRequest{CountTotal: true},
	}
	var res connectiontypes.QueryConnectionsResponse
	if err := q.query(ctx, ConnectionsPath, req, &res); err != nil {
		return expiry.ConnectionsInfo{}, err
	}

	count := len(res.Connections)
	if res.Pagination != nil && res.Pagination.Total > uint64(count) {
		count = int(res.Pagination.Total)
	}
	return expiry.ConnectionsInfo{Height: res.Height, Count: count}, nil
}

// BlockTime returns the header time of the block at height.
func (q *Querier) BlockTime(ctx context.Context, height uint64) (time.Time, error) {
	if height > math.MaxInt64 {
		return time.Time{}, errorsmod.Wrapf(types.ErrInvalidHeight, "%d", height)
	}

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()
	return q.node.BlockTime(ctx, int64(height))
}

// ConsensusTimestamp returns the timestamp of the tendermint consensus state
// stored for clientID at height.
func (q *Querier) ConsensusTimestamp(ctx context.Context, clientID string, height clienttypes.Height) (time.Time, error) {
	req := &clienttypes.QueryConsensusStateRequest{
		ClientId:       clientID,
		RevisionNumber: height.RevisionNumber,
		RevisionHeight: height.RevisionHeight,
	}
	var res clienttypes.QueryConsensusStateResponse
	if err := q.query(ctx, ConsensusStatePath, req, &res); err != nil {
		return time.Time{}, err
	}

	if res.ConsensusState == nil {
		return time.Time{}, errorsmod.Wrapf(types.ErrLookup, "consensus state of %s at %s", clientID, height)
	}
	if res.ConsensusState.TypeUrl != tendermintConsensusStateURL {
		return time.Time{}, errorsmod.Wrapf(types.ErrUnsupportedClient, "consensus state type %s", res.ConsensusState.TypeUrl)
	}

	var cs ibctm.ConsensusState
	if err := gogoproto.Unmarshal(res.ConsensusState.Value, &cs); err != nil {
		return time.Time{}, errorsmod.Wrapf(types.ErrParse, "consensus state of %s: %s", clientID, err)
	}
	return cs.Timestamp, nil
}

func (q *Querier) query(ctx context.Context, path string, req, res gogoproto.Message) error {
	data, err := gogoproto.Marshal(req)
	if err != nil {
		return errorsmod.Wrapf(types.ErrParse, "encode %s request: %s", path, err)
	}

	ctx, cancel := q.withTimeout(ctx)
	defer cancel()

	bz, err := q.node.ABCIQuery(ctx, path, data)
	if err != nil {
		return err
	}
	if err := gogoproto.Unmarshal(bz, res); err != nil {
		return errorsmod.Wrapf(types.ErrParse, "decode %s response: %s", path, err)
	}
	return nil
}

func (q *Querier) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout > 0 {
		return context.WithTimeout(ctx, q.timeout)
	}
	return ctx, func() {}
}

// decodeClientState converts an identified client state. Only 07-tendermint
// states carry a trusting period; other light clients are marked unsupported.
func decodeClientState(ics clienttypes.IdentifiedClientState) expiry.ClientState {
	cs := expiry.ClientState{ClientID: ics.ClientId}
	if ics.ClientState == nil {
		cs.Err = errorsmod.Wrapf(types.ErrLookup, "client state of %s", ics.ClientId)
		return cs
	}

	tmState, err := unpackTendermintClientState(ics.ClientState)
	if err != nil {
		cs.Err = err
		return cs
	}

	cs.ChainID = tmState.ChainId
	cs.LatestHeight = tmState.LatestHeight
	cs.TrustingPeriod = expiry.FormatTrustingPeriod(tmState.TrustingPeriod)
	return cs
}

func unpackTendermintClientState(protoAny *codectypes.Any) (*ibctm.ClientState, error) {
	if protoAny.TypeUrl != tendermintClientStateURL {
		return nil, errorsmod.Wrapf(types.ErrUnsupportedClient, "client state type %s", protoAny.TypeUrl)
	}

	var cs ibctm.ClientState
	if err := gogoproto.Unmarshal(protoAny.Value, &cs); err != nil {
		return nil, errorsmod.Wrapf(types.ErrParse, "tendermint client state: %s", err)
	}
	return &cs, nil
}
