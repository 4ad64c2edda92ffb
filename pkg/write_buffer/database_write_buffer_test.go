package write_buffer

import (
	"context"
	"github.com/mvollinga/cascade/pkg/elasticsearch/client"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"testing"
)

type testDocument struct {
	ID    string `json:"_id"`
	Value int    `json:"value"`
}

func TestDatabaseWriteBuffer(t *testing.T) {
	ctx := context.Background()

	t.Run("should hold writes below the queue size", func(t *testing.T) {
		ac := &captureClient{}
		buffer := NewDatabaseWriteBufferImpl[testDocument](ac, "test_index", zap.NewNop())

		err := buffer.WriteToBuffer(ctx, makeDocuments(WriteQueueSize))
		assert.NoError(t, err)
		assert.Empty(t, ac.bulks)
	})

	t.Run("should flush once the queue size is exceeded", func(t *testing.T) {
		ac := &captureClient{}
		buffer := NewDatabaseWriteBufferImpl[testDocument](ac, "test_index", zap.NewNop())

		err := buffer.WriteToBuffer(ctx, makeDocuments(WriteQueueSize+1))
		assert.NoError(t, err)
		assert.Len(t, ac.bulks, 1)
		assert.Len(t, ac.bulks[0].data, WriteQueueSize+1)
		assert.Equal(t, "test_index", ac.bulks[0].index)
	})

	t.Run("should move document ids into the bulk meta", func(t *testing.T) {
		ac := &captureClient{}
		buffer := NewDatabaseWriteBufferImpl[testDocument](ac, "test_index", zap.NewNop())

		err := buffer.WriteToBuffer(ctx, []testDocument{{ID: "doc-1", Value: 7}})
		assert.NoError(t, err)
		err = buffer.Flush(ctx)
		assert.NoError(t, err)

		assert.Len(t, ac.bulks, 1)
		assert.Equal(t, "doc-1", ac.bulks[0].meta[0]["_id"])
		assert.NotContains(t, ac.bulks[0].data[0], "_id")
	})

	t.Run("should drain the queue on flush and leave nothing behind", func(t *testing.T) {
		ac := &captureClient{}
		buffer := NewDatabaseWriteBufferImpl[testDocument](ac, "test_index", zap.NewNop())

		assert.NoError(t, buffer.WriteToBuffer(ctx, makeDocuments(3)))
		assert.NoError(t, buffer.Flush(ctx))
		assert.NoError(t, buffer.Flush(ctx))
		assert.Len(t, ac.bulks, 1)
	})
}

func makeDocuments(n int) []testDocument {
	documents := make([]testDocument, n)
	for i := range documents {
		documents[i] = testDocument{Value: i}
	}
	return documents
}

type capturedBulk struct {
	meta  []client.MetaMap
	data  []client.DocumentMap
	index string
}

type captureClient struct {
	bulks []capturedBulk
}

func (c *captureClient) BulkIndex(
	ctx context.Context,
	metaInfo []client.MetaMap,
	documentInfo []client.DocumentMap,
	index string,
) error {
	c.bulks = append(c.bulks, capturedBulk{meta: metaInfo, data: documentInfo, index: index})
	return nil
}

func (c *captureClient) Index(
	ctx context.Context,
	metaInfo client.MetaMap,
	documentInfo client.DocumentMap,
	index string,
) error {
	return c.BulkIndex(ctx, []client.MetaMap{metaInfo}, []client.DocumentMap{documentInfo}, index)
}

func (c *captureClient) Search(
	ctx context.Context,
	query string,
	indices []string,
	queryResultSize *int,
) ([]map[string]interface{}, error) {
	return nil, nil
}

func (c *captureClient) SearchAfter(
	ctx context.Context,
	query map[string]interface{},
	indices []string,
	searchAfterParams *client.SearchAfterParams,
	queryResultSize *int,
) <-chan client.SearchAfterResult {
	results := make(chan client.SearchAfterResult)
	close(results)
	return results
}

func (c *captureClient) Count(ctx context.Context, query string, indices []string) (int64, error) {
	return 0, nil
}
