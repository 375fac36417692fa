package core

import (
	"encoding/json"
	"net/http"
)

// IStrategy turns a request body into a reply. Implementations hold no
// mutable state, so handle may run concurrently and always returns the
// same reply for the same body.
type IStrategy interface {
	handle(body []byte) *Reply
	variant() string
}

var _ IStrategy = &DispatchStrategy{}
var _ IStrategy = &TransportFaultStrategy{}
var _ IStrategy = &ProtocolFaultStrategy{}

type Reply struct {
	Status int
	Header http.Header
	Body   []byte
}

func jsonReply(status int, body []byte) *Reply {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Access-Control-Allow-Origin", "*")

	return &Reply{
		Status: status,
		Header: header,
		Body:   body,
	}
}

// respondEach parses body and answers each call with respond, keeping batch
// positions. A malformed body gets DefaultResponse instead of an error.
func respondEach(body []byte, respond func(*RequestData) *JsonRpcResponse) *Reply {
	req, err := ParseRequest(body)

	if err != nil {
		req.logger.Warnf("answering with default envelope: %v", err)
		Count("malformed")
		return jsonReply(http.StatusOK, Serialize(DefaultResponse()))
	}

	responses := make([]*JsonRpcResponse, len(req.data))
	for i, call := range req.data {
		Count(methodLabel(call.Method))
		responses[i] = respond(call)
	}

	req.logger.Infof("%s answered %d call(s)", req.method(), len(responses))

	if req.isBatch {
		return jsonReply(http.StatusOK, Serialize(responses))
	}

	return jsonReply(http.StatusOK, Serialize(responses[0]))
}

// methodLabel keeps metric labels bounded to the dispatch table.
func methodLabel(method string) string {
	if IsKnownMethod(method) {
		return method
	}

	return "unknown_method"
}

func (d *DispatchStrategy) variant() string {
	return "dispatch"
}

// TransportFaultStrategy fails every request below the JSON-RPC layer.
type TransportFaultStrategy struct {
	status int
	body   []byte
}

func newTransportFaultStrategy(status int) *TransportFaultStrategy {
	body, _ := json.Marshal(map[string]string{"error": http.StatusText(status)})

	return &TransportFaultStrategy{
		status: status,
		body:   body,
	}
}

func (p *TransportFaultStrategy) Status() int {
	return p.status
}

func (p *TransportFaultStrategy) handle([]byte) *Reply {
	Count("transport_fault")
	return jsonReply(p.status, p.body)
}

func (p *TransportFaultStrategy) variant() string {
	return string(FaultTransport)
}

// ProtocolFaultStrategy answers every call, batch elements included, with
// the same JSON-RPC error.
type ProtocolFaultStrategy struct {
	code    int64
	message string
}

func newProtocolFaultStrategy(code int64, message string) *ProtocolFaultStrategy {
	return &ProtocolFaultStrategy{
		code:    code,
		message: message,
	}
}

func (p *ProtocolFaultStrategy) handle(body []byte) *Reply {
	Count("protocol_fault")

	return respondEach(body, func(call *RequestData) *JsonRpcResponse {
		return NewErrorResponse(call.ID, p.code, p.message)
	})
}

func (p *ProtocolFaultStrategy) variant() string {
	return string(FaultProtocol)
}
