package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/wp-labs/wp-motor-sub001/pkg/data"
)

// ElasticsearchBackend bulk-indexes rendered records into an index named
// by params.index (added, domain stack). params: addresses (comma
// separated), index.
//
// Grounded on pkg/stream/sink.go's BufferedSink batching shape, with the
// actual transport handed to github.com/elastic/go-elasticsearch/v8's
// bulk API instead of a hand-rolled HTTP client.
type ElasticsearchBackend struct {
	cfg   Config
	index string
	es    *elasticsearch.Client
}

func NewElasticsearchBackend(cfg Config) (*ElasticsearchBackend, error) {
	index := stringParam(cfg.Params, "index", "")
	if index == "" {
		return nil, fmt.Errorf("sink %s: elasticsearch backend requires params.index", cfg.Name)
	}
	addrs := stringParam(cfg.Params, "addresses", "http://localhost:9200")
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: strings.Split(addrs, ","),
	})
	if err != nil {
		return nil, fmt.Errorf("sink %s: elasticsearch client: %w", cfg.Name, err)
	}
	return &ElasticsearchBackend{cfg: cfg, index: index, es: client}, nil
}

func (b *ElasticsearchBackend) SinkRecord(ctx context.Context, rec *data.DataRecord) error {
	return b.SinkRecords(ctx, []*data.DataRecord{rec})
}

func (b *ElasticsearchBackend) SinkRecords(ctx context.Context, recs []*data.DataRecord) error {
	if len(recs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, rec := range recs {
		body, err := RenderRecord(rec, FormatJSON)
		if err != nil {
			return err
		}
		buf.WriteString(fmt.Sprintf(`{"index":{"_index":%q}}`, b.index))
		buf.WriteByte('\n')
		buf.Write(body)
		buf.WriteByte('\n')
	}
	req := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, b.es)
	if err != nil {
		return fmt.Errorf("sink %s: bulk request: %w", b.cfg.Name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("sink %s: bulk response status %s", b.cfg.Name, res.Status())
	}
	return nil
}

func (b *ElasticsearchBackend) Stop(ctx context.Context) error      { return nil }
func (b *ElasticsearchBackend) Reconnect(ctx context.Context) error { return nil }
