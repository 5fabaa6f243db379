package expiry

import (
	"context"
	"time"

	clienttypes "github.com/cosmos/ibc-go/v10/modules/core/02-client/types"
)

// Querier is the read-only view of a chain node needed to build a report.
type Querier interface {
	// ClientStates returns one page of light client states. Pages are numbered from 1.
	ClientStates(ctx context.Context, page uint64) (ClientStatesPage, error)
	// Connections returns the height the connection set was queried at.
	Connections(ctx context.Context) (ConnectionsInfo, error)
	// BlockTime returns the header time of the block at height.
	BlockTime(ctx context.Context, height uint64) (time.Time, error)
	// ConsensusTimestamp returns the timestamp of the consensus state stored
	// for clientID at height.
	ConsensusTimestamp(ctx context.Context, clientID string, height clienttypes.Height) (time.Time, error)
}

// ClientState is a light client as listed by the node.
type ClientState struct {
	ClientID       string
	ChainID        string
	LatestHeight   clienttypes.Height
	TrustingPeriod string

	// Err is set when the record could not be decoded. The client is still
	// part of the listing and is reported as failed.
	Err error
}

// PageResponse is the pagination cursor returned with a page.
type PageResponse struct {
	NextKey []byte
	Total   uint64
}

// Done reports whether no further pages should be requested.
func (p PageResponse) Done() bool {
	return len(p.NextKey) == 0 || p.Total == 0
}

// ClientStatesPage is a single page of the client state listing.
type ClientStatesPage struct {
	States     []ClientState
	Pagination PageResponse
}

// ConnectionsInfo summarizes the connection listing.
type ConnectionsInfo struct {
	// Height is the height the listing was served at.
	Height clienttypes.Height
	Count  int
}
