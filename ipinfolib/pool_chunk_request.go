package ipinfolib

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type fetchChunkRequest struct {
	ctx           context.Context
	ips           []string
	resultChannel chan<- fetchChunkResult
	wg            *sync.WaitGroup
}

type fetchChunkResult struct {
	ips   []string
	items map[string]BatchItem
	err   error
}

// poolChunkRequest schedules chunks of a single batch lookup into a
// worker pool which is shared by all lookups of the client.
type poolChunkRequest struct {
	ctx           context.Context
	resultChannel chan<- fetchChunkResult
	wg            *sync.WaitGroup
	pool          *ants.PoolWithFunc
}

// Do blocks until there is a free worker. If context is closed, nothing
// is scheduled.
func (p *poolChunkRequest) Do(ips []string) error {
	select {
	case <-p.ctx.Done():
		return ErrContextIsClosed
	default:
	}

	p.wg.Add(1)

	req := &fetchChunkRequest{
		ctx:           p.ctx,
		ips:           ips,
		resultChannel: p.resultChannel,
		wg:            p.wg,
	}

	if err := p.pool.Invoke(req); err != nil {
		p.wg.Done()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func newPoolChunkRequest(ctx context.Context,
	resultChannel chan<- fetchChunkResult,
	wg *sync.WaitGroup,
	pool *ants.PoolWithFunc) *poolChunkRequest {
	return &poolChunkRequest{
		ctx:           ctx,
		wg:            wg,
		resultChannel: resultChannel,
		pool:          pool,
	}
}
