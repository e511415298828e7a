package tasks

import (
	"context"

	"github.com/dsemenov/mediaport/internal/mediaexport"
)

// Dispatcher adapts the task client to the scheduler-facing contract:
// enqueue chunk and completion work, inspect what is pending, cancel what
// has not started.
type Dispatcher struct {
	client *Client
}

func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) EnqueueChunk(ctx context.Context, items []mediaexport.Item, chunkIndex, totalChunks int) error {
	_, err := d.client.Add(ImportChunkTask{
		Items:       items,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
	}).Ctx(ctx).Save()
	return err
}

func (d *Dispatcher) EnqueueCompletion(ctx context.Context) error {
	_, err := d.client.Add(ImportCompleteTask{}).Ctx(ctx).Save()
	return err
}

func (d *Dispatcher) HasPendingChunks() (bool, error) {
	return d.client.HasPending(QueueImportChunk)
}

func (d *Dispatcher) CancelPendingChunks() (int64, error) {
	return d.client.CancelPending(QueueImportChunk)
}
