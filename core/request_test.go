package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":42,"method":"eth_getBalance","params":["0xabc","latest"]}`))
	require.NoError(t, err)

	assert.False(t, req.IsBatch())
	require.Len(t, req.Calls(), 1)
	assert.Equal(t, "42", string(req.Calls()[0].ID))
	assert.Equal(t, "eth_getBalance", req.Calls()[0].Method)
	assert.Equal(t, []interface{}{"0xabc", "latest"}, req.Calls()[0].Params)
}

func TestParseBatchRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`[
		{"jsonrpc":"2.0","id":1,"method":"eth_chainId","params":[]},
		{"jsonrpc":"2.0","id":"two","method":"eth_blockNumber"},
		{"jsonrpc":"2.0","id":null,"method":"net_version","params":null}
	]`))
	require.NoError(t, err)

	assert.True(t, req.IsBatch())
	require.Len(t, req.Calls(), 3)
	assert.Equal(t, "1", string(req.Calls()[0].ID))
	assert.Equal(t, `"two"`, string(req.Calls()[1].ID))
	assert.Equal(t, "null", string(req.Calls()[2].ID))
	assert.Equal(t, "batch", req.method())
}

func TestParseBatchKeepsBadElements(t *testing.T) {
	req, err := ParseRequest([]byte(`[
		{"jsonrpc":"2.0","id":7,"method":"eth_chainId"},
		{"jsonrpc":"2.0","id":8},
		3,
		{"jsonrpc":"2.0","id":"x","method":"eth_call","params":{"to":"0x0"}},
		{"jsonrpc":"2.0","method":5}
	]`))
	require.NoError(t, err)

	assert.True(t, req.IsBatch())
	calls := req.Calls()
	require.Len(t, calls, 5)

	assert.Equal(t, "7", string(calls[0].ID))
	assert.Equal(t, "eth_chainId", calls[0].Method)

	assert.Equal(t, "8", string(calls[1].ID))
	assert.Equal(t, "", calls[1].Method)

	assert.Empty(t, calls[2].ID)
	assert.Equal(t, "", calls[2].Method)

	assert.Equal(t, `"x"`, string(calls[3].ID))
	assert.Equal(t, "", calls[3].Method)
	assert.Nil(t, calls[3].Params)

	assert.Empty(t, calls[4].ID)
}

func TestParseMalformedRequest(t *testing.T) {
	cases := map[string]string{
		"not json":          `this is not json`,
		"truncated":         `{"jsonrpc":"2.0","id":1,"method":`,
		"no method":         `{"jsonrpc":"2.0","id":1,"params":[]}`,
		"numeric method":    `{"jsonrpc":"2.0","id":1,"method":5}`,
		"object params":     `{"jsonrpc":"2.0","id":1,"method":"eth_call","params":{"to":"0x0"}}`,
		"scalar":            `"eth_chainId"`,
		"empty batch":       `[]`,
		"empty":             ``,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := ParseRequest([]byte(body))

			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload))
			assert.NotNil(t, req)
			assert.NotNil(t, req.logger)
		})
	}
}
