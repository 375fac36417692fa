package core

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

const JsonRpcVersion = "2.0"

// JSON-RPC error codes used by the simulator.
const (
	ErrCodeInvalidParams = -32602
	ErrCodeInternal      = -32603
)

var (
	nullID    = json.RawMessage("null")
	defaultID = json.RawMessage("1")
)

type RequestData struct {
	JsonRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params"`
}

// JsonRpcResponse carries exactly one of Result or Error on the wire.
type JsonRpcResponse struct {
	JsonRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *JsonRpcError   `json:"error,omitempty"`
	Result  interface{}     `json:"result"`
}

type JsonRpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

type successEnvelope struct {
	JsonRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

type failureEnvelope struct {
	JsonRpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   *JsonRpcError   `json:"error"`
}

func (r JsonRpcResponse) MarshalJSON() ([]byte, error) {
	id := r.ID
	if len(id) == 0 {
		id = nullID
	}

	if r.Error != nil {
		return json.Marshal(failureEnvelope{JsonRpc: JsonRpcVersion, ID: id, Error: r.Error})
	}

	return json.Marshal(successEnvelope{JsonRpc: JsonRpcVersion, ID: id, Result: r.Result})
}

func (r *JsonRpcResponse) IsError() bool {
	return r.Error != nil
}

func NewSuccessResponse(id json.RawMessage, result interface{}) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRpc: JsonRpcVersion,
		ID:      id,
		Result:  result,
	}
}

func NewErrorResponse(id json.RawMessage, code int64, message string) *JsonRpcResponse {
	return &JsonRpcResponse{
		JsonRpc: JsonRpcVersion,
		ID:      id,
		Error: &JsonRpcError{
			Code:    code,
			Message: message,
		},
	}
}

// DefaultResponse is what a caller gets back when its payload could not be parsed.
func DefaultResponse() *JsonRpcResponse {
	return NewSuccessResponse(defaultID, "0x1")
}

// Serialize encodes a single response or a batch ([]*JsonRpcResponse) to wire bytes.
func Serialize(v interface{}) []byte {
	bts, err := json.Marshal(v)

	if err != nil {
		logrus.Errorf("serialize response failed: %v", err)
		bts, _ = json.Marshal(NewErrorResponse(nullID, ErrCodeInternal, err.Error()))
	}

	return bts
}
