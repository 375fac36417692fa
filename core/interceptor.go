package core

import (
	"net/http"
	"time"

	"github.com/ivanzzeth/chainsim/utils"
	"github.com/sirupsen/logrus"
)

// Exchange is one outbound request as seen by a host transport that can
// answer it locally or let it continue to the network.
type Exchange interface {
	URL() string
	Method() string
	Body() ([]byte, error)
	Fulfill(reply *Reply) error
	Passthrough() error
}

type Interceptor struct {
	targetHost string
	strategy   IStrategy
}

func NewInterceptor(targetHost string, strategy IStrategy) *Interceptor {
	return &Interceptor{
		targetHost: targetHost,
		strategy:   strategy,
	}
}

func (i *Interceptor) TargetHost() string {
	return i.targetHost
}

func (i *Interceptor) ShouldIntercept(url string) bool {
	return i.targetHost != "" && utils.ContainsFold(url, i.targetHost)
}

// Handle answers ex when it targets the simulated host and lets everything
// else through untouched.
func (i *Interceptor) Handle(ex Exchange) error {
	if !i.ShouldIntercept(ex.URL()) {
		Count("passthrough")
		return ex.Passthrough()
	}

	return i.Serve(ex)
}

// Serve is Handle for transports where every request is already bound for
// the simulated host.
func (i *Interceptor) Serve(ex Exchange) error {
	switch ex.Method() {
	case http.MethodOptions:
		Count("preflight")
		return ex.Fulfill(PreflightReply())
	case http.MethodPost:
	default:
		Count("passthrough")
		logrus.Debugf("%s %s passed through", ex.Method(), ex.URL())
		return ex.Passthrough()
	}

	body, err := ex.Body()
	if err != nil {
		return err
	}

	return ex.Fulfill(i.Respond(body))
}

// Respond runs the active strategy over a JSON-RPC body.
func (i *Interceptor) Respond(body []byte) *Reply {
	startTime := time.Now()

	reply := i.strategy.handle(body)

	costInMs := float64(time.Since(startTime).Nanoseconds()) / 1000000
	Time(i.strategy.variant(), costInMs)

	if reply.Status == http.StatusOK && !utils.NoErrorFieldInJSON(string(reply.Body)) {
		Count("error_response")
	}

	return reply
}

func PreflightReply() *Reply {
	header := make(http.Header)
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "content-type")

	return &Reply{
		Status: http.StatusNoContent,
		Header: header,
		Body:   []byte{},
	}
}
