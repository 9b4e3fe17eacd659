package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
)

func newTestServer(t *testing.T, query *mockQueryService, batch *mockBatchService) *Server {
	t.Helper()
	ports := &Ports{Query: query, Schemes: testRegistry()}
	if batch != nil {
		ports.Batch = batch
	}
	server, err := NewServer(ports, "test")
	require.NoError(t, err)
	return server
}

func TestServer_handleQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the envelope in field order", func(t *testing.T) {
		env := &domain.Envelope{
			Locator: "env://HOME",
			Result: domain.SingleResult(domain.NewObject().
				Set("name", "HOME").
				Set("value", "/home/ada")),
		}
		server := newTestServer(t, &mockQueryService{envelopes: map[string]*domain.Envelope{"env://HOME": env}}, nil)

		res, out, err := server.handleQuery(ctx, nil, QueryInput{Locator: "env://HOME"})

		require.NoError(t, err)
		assert.Nil(t, res)
		raw, ok := out.(json.RawMessage)
		require.True(t, ok)
		assert.Equal(t, `{"name":"HOME","value":"/home/ada"}`, string(raw))
	})

	t.Run("sequence results are wrapped in items", func(t *testing.T) {
		env := &domain.Envelope{
			Locator: "env://",
			Result:  domain.SequenceResult([]*domain.Object{domain.NewObject().Set("name", "PATH")}),
			Meta: &domain.TruncationMeta{
				Truncated:      true,
				Reason:         domain.ReasonMaxItems,
				TotalAvailable: 3,
				Returned:       1,
			},
		}
		server := newTestServer(t, &mockQueryService{envelopes: map[string]*domain.Envelope{"env://": env}}, nil)

		_, out, err := server.handleQuery(ctx, nil, QueryInput{Locator: "env://"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"items":[{"name":"PATH"}],
			"meta":{"truncated":true,"reason":"max_items_exceeded","totalAvailable":3,"returned":1}}`,
			string(out.(json.RawMessage)))
	})

	t.Run("failures become tool errors with a record", func(t *testing.T) {
		server := newTestServer(t, &mockQueryService{err: &domain.UnknownSchemeError{Scheme: "foo"}}, nil)

		res, out, err := server.handleQuery(ctx, nil, QueryInput{Locator: "foo://bar"})

		require.NoError(t, err)
		assert.Nil(t, out)
		require.NotNil(t, res)
		assert.True(t, res.IsError)
		require.Len(t, res.Content, 1)
		text, ok := res.Content[0].(*mcp.TextContent)
		require.True(t, ok)
		assert.JSONEq(t, `{"error":{"locator":"foo://bar","kind":"unknown_scheme",
			"message":"unknown scheme \"foo\"","exitCode":2}}`, text.Text)
	})
}

func TestServer_handleBatch(t *testing.T) {
	ctx := context.Background()

	errRec := domain.ClassifyError("foo://bar", &domain.UnknownSchemeError{Scheme: "foo"})
	batch := &mockBatchService{
		records: []domain.BatchRecord{
			{
				Index:   0,
				Locator: "env://HOME",
				Envelope: &domain.Envelope{
					Locator: "env://HOME",
					Result:  domain.SingleResult(domain.NewObject().Set("value", "/home/ada")),
				},
			},
			{Index: 1, Locator: "foo://bar", Error: &errRec},
		},
		summary: domain.BatchSummary{RunID: "run-1", Total: 2, Succeeded: 1, Failed: 1, ExitCode: 2},
	}
	server := newTestServer(t, &mockQueryService{}, batch)

	_, out, err := server.handleBatch(ctx, nil, BatchInput{Locators: []string{"env://HOME", "foo://bar"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"env://HOME", "foo://bar"}, batch.got)
	assert.JSONEq(t, `{
		"records":[
			{"index":0,"locator":"env://HOME","ok":true,"result":{"value":"/home/ada"}},
			{"index":1,"locator":"foo://bar","ok":false,
			 "error":{"kind":"unknown_scheme","message":"unknown scheme \"foo\"","exitCode":2}}
		],
		"summary":{"runId":"run-1","total":2,"succeeded":1,"failed":1,"exitCode":2}
	}`, string(out.(json.RawMessage)))
}

func TestServer_handleBatch_Empty(t *testing.T) {
	server := newTestServer(t, &mockQueryService{}, &mockBatchService{})

	_, out, err := server.handleBatch(context.Background(), nil, BatchInput{})

	require.NoError(t, err)
	assert.Contains(t, string(out.(json.RawMessage)), `"records":[]`)
}

func TestServer_handleListSchemes(t *testing.T) {
	server := newTestServer(t, &mockQueryService{}, nil)

	_, out, err := server.handleListSchemes(context.Background(), nil, nil)

	require.NoError(t, err)
	require.Len(t, out.Schemes, 2)
	assert.Equal(t, "env", out.Schemes[0].Scheme)
	assert.Equal(t, "ssl", out.Schemes[1].Scheme)
}

func TestServer_handleDescribeScheme(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockQueryService{}, nil)

	t.Run("known scheme", func(t *testing.T) {
		_, caps, err := server.handleDescribeScheme(ctx, nil, DescribeInput{Scheme: "ssl"})

		require.NoError(t, err)
		assert.Equal(t, "TLS certificates", caps.Description)
		assert.Equal(t, []string{"ssl://example.com/san"}, caps.Examples)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, caps, err := server.handleDescribeScheme(ctx, nil, DescribeInput{Scheme: "nope"})

		assert.ErrorIs(t, err, domain.ErrUnknownScheme)
		assert.Nil(t, caps)
	})
}
