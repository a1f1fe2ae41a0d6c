// internal/sinks/elasticsearch.go
package sinks

import (
	"context"
	"encoding/json"

	stderrors "routing-engine/internal/common/errors"
	"routing-engine/internal/models"
)

// DocumentIndexer is the slice of the Elasticsearch client this sink needs.
// Satisfied by database.ElasticsearchClient.
type DocumentIndexer interface {
	Index(ctx context.Context, index, documentID string, body []byte) error
}

// ElasticsearchSink indexes routing records for ad hoc querying. Documents
// never contain request content, only the assessment metadata.
type ElasticsearchSink struct {
	client DocumentIndexer
	index  string
}

func NewElasticsearchSink(client DocumentIndexer, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return "elasticsearch" }

func (s *ElasticsearchSink) Record(ctx context.Context, rec models.RoutingRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return stderrors.NewIndexWriteFailedError(s.index, err)
	}

	if err := s.client.Index(ctx, s.index, rec.RequestID, body); err != nil {
		return stderrors.NewIndexWriteFailedError(s.index, err)
	}
	return nil
}
