package expiry

import (
	"context"
	"iter"
)

// Pages iterates over the client state listing of q, one page at a time,
// starting from page 1 every time it is ranged over. The page carrying the
// final cursor is yielded before the iteration ends. An error is yielded once
// and ends the iteration.
func Pages(ctx context.Context, q Querier) iter.Seq2[ClientStatesPage, error] {
	return func(yield func(ClientStatesPage, error) bool) {
		for page := uint64(1); ; page++ {
			if err := ctx.Err(); err != nil {
				yield(ClientStatesPage{}, err)
				return
			}

			res, err := q.ClientStates(ctx, page)
			if err != nil {
				yield(ClientStatesPage{}, err)
				return
			}
			if !yield(res, nil) || res.Pagination.Done() {
				return
			}
		}
	}
}

// CollectClientStates concatenates every page of the listing in page order.
func CollectClientStates(ctx context.Context, q Querier) ([]ClientState, error) {
	var states []ClientState
	for page, err := range Pages(ctx, q) {
		if err != nil {
			return nil, err
		}
		states = append(states, page.States...)
	}
	return states, nil
}
