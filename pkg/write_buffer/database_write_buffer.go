package write_buffer

import (
	"context"
	"fmt"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"go.uber.org/zap"
	"sync"
	"time"
)

const WriteQueueSize = 30
const flushTimeOut = 10 * time.Second

// DatabaseWriteBuffer queues documents for one index and bulk-writes them.
// Writes past the queue size flush synchronously so append order is
// preserved; Flush drains whatever is left.
type DatabaseWriteBuffer[ValueType any] interface {
	WriteToBuffer(ctx context.Context, values []ValueType) error
	Flush(ctx context.Context) error
}

type DatabaseWriteBufferImpl[ValueType any] struct {
	writeQueue  []ValueType
	ac          client.CascadeClient
	esIndexName string
	logger      *zap.Logger
	mu          sync.Mutex
}

func NewDatabaseWriteBufferImpl[ValueType any](
	ac client.CascadeClient,
	esIndexName string,
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue:  []ValueType{},
		ac:          ac,
		esIndexName: esIndexName,
		logger:      logger,
	}
}

func (wb *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(
	ctx context.Context,
	values []ValueType,
) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	wb.writeQueue = append(wb.writeQueue, values...)
	if len(wb.writeQueue) > WriteQueueSize {
		if err := wb.flushQueue(ctx); err != nil {
			wb.logger.Error(
				"Failed to flush write buffer",
				zap.String("index", wb.esIndexName),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}

func (wb *DatabaseWriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.flushQueue(ctx)
}

func (wb *DatabaseWriteBufferImpl[ValueType]) flushQueue(ctx context.Context) error {
	if len(wb.writeQueue) == 0 {
		return nil
	}
	bulkCtx, cancel := context.WithTimeout(ctx, flushTimeOut)
	defer cancel()
	metaMap, dataMap, err := client.ToMetaAndDataMap(wb.writeQueue)
	wb.writeQueue = wb.writeQueue[:0]
	if err != nil {
		return fmt.Errorf("error converting write queue to meta and data map: %w", err)
	}
	if err := wb.ac.BulkIndex(bulkCtx, metaMap, dataMap, wb.esIndexName); err != nil {
		return fmt.Errorf("error bulk indexing to Elasticsearch: %w", err)
	}
	return nil
}
