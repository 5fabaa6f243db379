package rpcquerier_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gogoproto "github.com/cosmos/gogoproto/proto"
	"github.com/stretchr/testify/require"

	"github.com/cosmos/chainops/ibc/expiry"
	"github.com/cosmos/chainops/ibc/expiry/rpcquerier"
	"github.com/cosmos/chainops/types"

	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/types/query"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
	connectiontypes "github.com/cosmos/ibc-go/v10/modules/core/03-connection/types"
	ibctm "github.com/cosmos/ibc-go/v10/modules/light-clients/07-tendermint"
)

var chainTime = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeNode answers ABCI queries from a handler per path.
type fakeNode struct {
	t        *testing.T
	handlers map[string]func(data []byte) (gogoproto.Message, error)
	blocks   map[int64]time.Time
}

func (n *fakeNode) ABCIQuery(_ context.Context, path string, data []byte) ([]byte, error) {
	h, ok := n.handlers[path]
	if !ok {
		return nil, fmt.Errorf("unknown query path %s", path)
	}
	res, err := h(data)
	if err != nil {
		return nil, err
	}
	bz, err := gogoproto.Marshal(res)
	require.NoError(n.t, err)
	return bz, nil
}

func (n *fakeNode) BlockTime(_ context.Context, height int64) (time.Time, error) {
	t, ok := n.blocks[height]
	if !ok {
		return time.Time{}, fmt.Errorf("block %d not found", height)
	}
	return t, nil
}

func packAny(t *testing.T, msg gogoproto.Message) *codectypes.Any {
	t.Helper()
	protoAny, err := codectypes.NewAnyWithValue(msg)
	require.NoError(t, err)
	return protoAny
}

func tendermintClient(t *testing.T, id, chainID string, height clienttypes.Height, trustingPeriod time.Duration) clienttypes.IdentifiedClientState {
	t.Helper()
	return clienttypes.IdentifiedClientState{
		ClientId: id,
		ClientState: packAny(t, &ibctm.ClientState{
			ChainId:        chainID,
			TrustingPeriod: trustingPeriod,
			LatestHeight:   height,
		}),
	}
}

func TestClientStates(t *testing.T) {
	var requests []*query.PageRequest
	node := &fakeNode{t: t, handlers: map[string]func([]byte) (gogoproto.Message, error){
		rpcquerier.ClientStatesPath: func(data []byte) (gogoproto.Message, error) {
			var req clienttypes.QueryClientStatesRequest
			require.NoError(t, gogoproto.Unmarshal(data, &req))
			requests = append(requests, req.Pagination)

			return &clienttypes.QueryClientStatesResponse{
				ClientStates: clienttypes.IdentifiedClientStates{
					tendermintClient(t, "07-tendermint-0", "cosmoshub-4", clienttypes.NewHeight(4, 100), 14*24*time.Hour),
					{
						ClientId:    "06-solomachine-1",
						ClientState: &codectypes.Any{TypeUrl: "/ibc.lightclients.solomachine.v3.ClientState"},
					},
					{ClientId: "07-tendermint-2"},
				},
				Pagination: &query.PageResponse{NextKey: []byte{0x01}, Total: 30},
			}, nil
		},
	}}
	q := rpcquerier.NewWithNode(node, rpcquerier.WithPageLimit(10))

	res, err := q.ClientStates(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, []*query.PageRequest{{Offset: 20, Limit: 10, CountTotal: true}}, requests)

	require.Equal(t, expiry.PageResponse{NextKey: []byte{0x01}, Total: 30}, res.Pagination)
	require.Len(t, res.States, 3)
	require.Equal(t, expiry.ClientState{
		ClientID:       "07-tendermint-0",
		ChainID:        "cosmoshub-4",
		LatestHeight:   clienttypes.NewHeight(4, 100),
		TrustingPeriod: "1209600s",
	}, res.States[0])
	require.ErrorIs(t, res.States[1].Err, types.ErrUnsupportedClient)
	require.ErrorIs(t, res.States[2].Err, types.ErrLookup)

	_, err = q.ClientStates(context.Background(), 0)
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestConnections(t *testing.T) {
	node := &fakeNode{t: t, handlers: map[string]func([]byte) (gogoproto.Message, error){
		rpcquerier.ConnectionsPath: func([]byte) (gogoproto.Message, error) {
			return &connectiontypes.QueryConnectionsResponse{
				Connections: []*connectiontypes.IdentifiedConnection{{Id: "connection-0"}},
				Pagination:  &query.PageResponse{Total: 3},
				Height:      clienttypes.NewHeight(0, 5000),
			}, nil
		},
	}}

	res, err := rpcquerier.NewWithNode(node).Connections(context.Background())
	require.NoError(t, err)
	require.Equal(t, expiry.ConnectionsInfo{Height: clienttypes.NewHeight(0, 5000), Count: 3}, res)
}

func TestConsensusTimestamp(t *testing.T) {
	consensusTime := chainTime.Add(-2000000 * time.Second)

	testCases := []struct {
		name   string
		res    *clienttypes.QueryConsensusStateResponse
		expErr error
	}{
		{
			name: "tendermint consensus state",
			res: &clienttypes.QueryConsensusStateResponse{
				ConsensusState: packAny(t, &ibctm.ConsensusState{Timestamp: consensusTime}),
			},
		},
		{
			name:   "missing consensus state",
			res:    &clienttypes.QueryConsensusStateResponse{},
			expErr: types.ErrLookup,
		},
		{
			name: "other light client",
			res: &clienttypes.QueryConsensusStateResponse{
				ConsensusState: &codectypes.Any{TypeUrl: "/ibc.lightclients.solomachine.v3.ConsensusState"},
			},
			expErr: types.ErrUnsupportedClient,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node := &fakeNode{t: t, handlers: map[string]func([]byte) (gogoproto.Message, error){
				rpcquerier.ConsensusStatePath: func(data []byte) (gogoproto.Message, error) {
					var req clienttypes.QueryConsensusStateRequest
					require.NoError(t, gogoproto.Unmarshal(data, &req))
					require.Equal(t, "07-tendermint-0", req.ClientId)
					require.Equal(t, uint64(4), req.RevisionNumber)
					require.Equal(t, uint64(100), req.RevisionHeight)
					return tc.res, nil
				},
			}}

			ts, err := rpcquerier.NewWithNode(node).ConsensusTimestamp(context.Background(), "07-tendermint-0", clienttypes.NewHeight(4, 100))
			if tc.expErr != nil {
				require.ErrorIs(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			require.True(t, consensusTime.Equal(ts))
		})
	}
}

func TestQueryError(t *testing.T) {
	errNode := errors.New("connection refused")
	node := &fakeNode{t: t, handlers: map[string]func([]byte) (gogoproto.Message, error){
		rpcquerier.ConnectionsPath: func([]byte) (gogoproto.Message, error) { return nil, errNode },
	}}

	_, err := rpcquerier.NewWithNode(node).Connections(context.Background())
	require.ErrorIs(t, err, errNode)
}

func TestBlockTime(t *testing.T) {
	node := &fakeNode{t: t, blocks: map[int64]time.Time{5000: chainTime}}
	q := rpcquerier.NewWithNode(node, rpcquerier.WithTimeout(time.Second))

	ts, err := q.BlockTime(context.Background(), 5000)
	require.NoError(t, err)
	require.Equal(t, chainTime, ts)

	_, err = q.BlockTime(context.Background(), 1<<63)
	require.ErrorIs(t, err, types.ErrInvalidHeight)
}
