package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jonwraymond/ensemblops/batch"
)

// Batch validates items against the client's batch limit and issues them in
// chunks of the client's chunk size. issue normally calls RequestPost.
func Batch[T, R any](ctx context.Context, c *Client, items []T, issue batch.IssueFunc[T, R], merge batch.MergeFunc[R], zero R) (R, error) {
	if err := batch.Validate(len(items), c.config.MaxBatchItems); err != nil {
		return zero, err
	}
	return batch.Execute(ctx, items, c.config.ChunkSize, issue, merge, zero)
}

// chunkBody builds the POST body for one chunk: extra fields plus the
// identifiers under field.
func chunkBody(field string, chunk []string, extra map[string]any) map[string]any {
	body := make(map[string]any, len(extra)+1)
	maps.Copy(body, extra)
	body[field] = chunk
	return body
}

// BatchPostKeyed POSTs ids in chunks as {field: [...]} and unions the keyed
// responses, e.g. POST /lookup/id with field "ids".
func (c *Client) BatchPostKeyed(ctx context.Context, endpoint, field string, ids []string, extra map[string]any, params map[string]string) (map[string]json.RawMessage, error) {
	issue := func(ctx context.Context, chunk []string) (map[string]json.RawMessage, error) {
		raw, err := c.RequestPost(ctx, endpoint, chunkBody(field, chunk, extra), params)
		if err != nil {
			return nil, err
		}
		var out map[string]json.RawMessage
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %s: want object: %w", ErrDecodeResponse, endpoint, err)
		}
		return out, nil
	}
	return Batch(ctx, c, ids, issue, batch.MergeKeyed[string, json.RawMessage], nil)
}

// BatchPostOrdered POSTs ids in chunks as {field: [...]} and concatenates the
// array responses in input order, e.g. POST /vep/human/hgvs with field
// "hgvs_notations".
func (c *Client) BatchPostOrdered(ctx context.Context, endpoint, field string, ids []string, extra map[string]any, params map[string]string) ([]json.RawMessage, error) {
	issue := func(ctx context.Context, chunk []string) ([]json.RawMessage, error) {
		raw, err := c.RequestPost(ctx, endpoint, chunkBody(field, chunk, extra), params)
		if err != nil {
			return nil, err
		}
		var out []json.RawMessage
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %s: want array: %w", ErrDecodeResponse, endpoint, err)
		}
		return out, nil
	}
	return Batch(ctx, c, ids, issue, batch.MergeOrdered[json.RawMessage], nil)
}

// ChunkSize returns the configured batch chunk size.
func (c *Client) ChunkSize() int {
	return c.config.ChunkSize
}
