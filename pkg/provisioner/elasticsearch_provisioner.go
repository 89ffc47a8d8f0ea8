package provisioner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchProvisioner creates the index an elasticsearch sink
// writes to, if it doesn't already exist.
type ElasticsearchProvisioner struct{}

func NewElasticsearchProvisioner() *ElasticsearchProvisioner { return &ElasticsearchProvisioner{} }

// Provision reads the same "addresses"/"index" params the sink backend
// itself consumes (pkg/sink/elasticsearch.go), so one params table
// describes both where to write and what to provision.
func (p *ElasticsearchProvisioner) Provision(ctx context.Context, params map[string]any) error {
	addresses := strings.Split(stringParamDefault(params, "addresses", "http://localhost:9200"), ",")
	index, err := requireNonEmpty(params, "index")
	if err != nil {
		return err
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return fmt.Errorf("elasticsearch client: %w", err)
	}

	exists, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %q: %w", index, err)
	}
	defer exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	body := map[string]any{
		"settings": map[string]any{
			"number_of_shards":   intParam(params, "number_of_shards", 1),
			"number_of_replicas": intParam(params, "number_of_replicas", 0),
		},
		"mappings": defaultMappings(),
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal index body: %w", err)
	}

	res, err := client.Indices.Create(index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		var errResp map[string]any
		if json.NewDecoder(res.Body).Decode(&errResp) == nil {
			if errBody, ok := errResp["error"].(map[string]any); ok {
				if errType, _ := errBody["type"].(string); errType == "resource_already_exists_exception" {
					return nil
				}
			}
		}
		return fmt.Errorf("create index %q: %s", index, res.Status())
	}
	return nil
}

func defaultMappings() map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"@timestamp": map[string]any{"type": "date"},
		},
	}
}
