package core

import (
	"encoding/json"
	"fmt"

	"github.com/ivanzzeth/chainsim/utils"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var ErrMalformedPayload = fmt.Errorf("malformed json-rpc payload")

type Request struct {
	logger   *logrus.Entry
	data     []*RequestData
	reqBytes []byte
	isBatch  bool
}

func (r *Request) Calls() []*RequestData {
	return r.data
}

func (r *Request) IsBatch() bool {
	return r.isBatch
}

// method is used as a log field and metrics label.
func (r *Request) method() string {
	if r.isBatch {
		return "batch"
	}

	if len(r.data) == 0 {
		return "malformed"
	}

	return r.data[0].Method
}

func malformed(reason string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(reason, args...))
}

// ParseRequest decodes a single call or a batch. The shape is decided by the
// top level JSON value: an array is a batch, an object is a single call.
// A bad batch element does not fail the batch, it keeps its slot with an
// empty method so it gets the default answer. The returned Request is usable
// for logging even when err is not nil.
func ParseRequest(reqBodyBytes []byte) (*Request, error) {
	logger := logrus.WithFields(logrus.Fields{"request_id": utils.RandStringRunes(8)})
	logger.Debugf("Request Body: %s", string(reqBodyBytes))

	req := &Request{
		logger:   logger,
		reqBytes: reqBodyBytes,
	}

	if !gjson.ValidBytes(reqBodyBytes) {
		return req, malformed("invalid json")
	}

	root := gjson.ParseBytes(reqBodyBytes)

	switch {
	case root.IsArray():
		elems := root.Array()

		if len(elems) == 0 {
			return req, malformed("empty batch")
		}

		data := make([]*RequestData, len(elems))
		for i, elem := range elems {
			data[i] = decodeBatchCall(logger, i, elem)
		}

		req.data = data
		req.isBatch = true
	case root.IsObject():
		if err := checkCall(root); err != nil {
			return req, malformed("%v", err)
		}

		var data RequestData
		if err := json.Unmarshal(reqBodyBytes, &data); err != nil {
			return req, malformed("%v", err)
		}

		req.data = []*RequestData{&data}
	default:
		return req, malformed("unexpected top level %s", root.Type)
	}

	req.logger = req.logger.WithField("method", req.method())
	logger.Debugf("New, method: %s", req.method())

	return req, nil
}

func decodeBatchCall(logger *logrus.Entry, i int, elem gjson.Result) *RequestData {
	data := &RequestData{}

	err := checkCall(elem)
	if err == nil {
		err = json.Unmarshal([]byte(elem.Raw), data)
	}

	if err != nil {
		logger.Warnf("batch element %d answered with default result: %v", i, err)

		data = &RequestData{JsonRpc: JsonRpcVersion}
		if id := elem.Get("id"); elem.IsObject() && id.Exists() {
			data.ID = json.RawMessage(id.Raw)
		}
	}

	return data
}

func checkCall(call gjson.Result) error {
	if !call.IsObject() {
		return fmt.Errorf("not an object")
	}

	if method := call.Get("method"); method.Type != gjson.String {
		return fmt.Errorf("missing method")
	}

	if params := call.Get("params"); params.Exists() && !params.IsArray() && params.Type != gjson.Null {
		return fmt.Errorf("params should be an array")
	}

	return nil
}
