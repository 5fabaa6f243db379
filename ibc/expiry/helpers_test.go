package expiry_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cosmos/chainops/ibc/expiry"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
)

var _ expiry.Querier = (*fakeQuerier)(nil)

// fakeQuerier serves canned responses and records the calls it receives.
type fakeQuerier struct {
	pages      []expiry.ClientStatesPage
	pageErr    map[uint64]error
	conns      expiry.ConnectionsInfo
	connsErr   error
	blockTimes map[uint64]time.Time
	consensus  map[string]time.Time
	consErr    map[string]error

	mu             sync.Mutex
	requestedPages []uint64
	consensusCalls []string
}

func consensusKey(clientID string, height clienttypes.Height) string {
	return fmt.Sprintf("%s@%s", clientID, height)
}

func (f *fakeQuerier) ClientStates(_ context.Context, page uint64) (expiry.ClientStatesPage, error) {
	f.mu.Lock()
	f.requestedPages = append(f.requestedPages, page)
	f.mu.Unlock()

	if err := f.pageErr[page]; err != nil {
		return expiry.ClientStatesPage{}, err
	}
	if page == 0 || int(page) > len(f.pages) {
		return expiry.ClientStatesPage{}, nil
	}
	return f.pages[page-1], nil
}

func (f *fakeQuerier) Connections(context.Context) (expiry.ConnectionsInfo, error) {
	return f.conns, f.connsErr
}

func (f *fakeQuerier) BlockTime(_ context.Context, height uint64) (time.Time, error) {
	t, ok := f.blockTimes[height]
	if !ok {
		return time.Time{}, fmt.Errorf("block %d not found", height)
	}
	return t, nil
}

func (f *fakeQuerier) ConsensusTimestamp(_ context.Context, clientID string, height clienttypes.Height) (time.Time, error) {
	key := consensusKey(clientID, height)

	f.mu.Lock()
	f.consensusCalls = append(f.consensusCalls, key)
	f.mu.Unlock()

	if err := f.consErr[key]; err != nil {
		return time.Time{}, err
	}
	t, ok := f.consensus[key]
	if !ok {
		return time.Time{}, fmt.Errorf("consensus state %s not found", key)
	}
	return t, nil
}

func newClient(id string, revisionHeight uint64, trustingPeriod string) expiry.ClientState {
	return expiry.ClientState{
		ClientID:       id,
		ChainID:        "cosmoshub-4",
		LatestHeight:   clienttypes.NewHeight(4, revisionHeight),
		TrustingPeriod: trustingPeriod,
	}
}

// page builds a page of n clients whose ids continue from offset.
func page(offset, n int, nextKey string, total uint64) expiry.ClientStatesPage {
	states := make([]expiry.ClientState, 0, n)
	for i := 0; i < n; i++ {
		states = append(states, newClient(fmt.Sprintf("07-tendermint-%d", offset+i), 100, "1209600s"))
	}
	return expiry.ClientStatesPage{
		States: states,
		Pagination: expiry.PageResponse{
			NextKey: []byte(nextKey),
			Total:   total,
		},
	}
}
