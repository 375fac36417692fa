package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessEnvelope(t *testing.T) {
	bts := Serialize(NewSuccessResponse(json.RawMessage(`"abc"`), "0x2"))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"abc","result":"0x2"}`, string(bts))

	// a nil result is still a success
	bts = Serialize(NewSuccessResponse(json.RawMessage(`7`), nil))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"result":null}`, string(bts))
}

func TestErrorEnvelope(t *testing.T) {
	bts := Serialize(NewErrorResponse(json.RawMessage(`3`), -32005, "rate limited"))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":3,"error":{"code":-32005,"message":"rate limited"}}`, string(bts))
	assert.NotContains(t, string(bts), "result")
}

func TestMissingIDIsNull(t *testing.T) {
	bts := Serialize(NewSuccessResponse(nil, "0x1"))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"result":"0x1"}`, string(bts))
}

func TestSerializeBatch(t *testing.T) {
	bts := Serialize([]*JsonRpcResponse{
		NewSuccessResponse(json.RawMessage(`1`), "0x1"),
		NewErrorResponse(json.RawMessage(`2`), -1, "x"),
	})

	assert.JSONEq(t, `[
		{"jsonrpc":"2.0","id":1,"result":"0x1"},
		{"jsonrpc":"2.0","id":2,"error":{"code":-1,"message":"x"}}
	]`, string(bts))
}

func TestDefaultResponse(t *testing.T) {
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`, string(Serialize(DefaultResponse())))
}

func TestResponseDecode(t *testing.T) {
	var resp JsonRpcResponse
	err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":9,"error":{"code":-32005,"message":"rate limited"}}`), &resp)

	assert.NoError(t, err)
	assert.True(t, resp.IsError())
	assert.Equal(t, int64(-32005), resp.Error.Code)
	assert.Equal(t, "9", string(resp.ID))
}
