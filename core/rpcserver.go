package core

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the active scenario as a standalone fake node.
// Routes:
// 1. GET /health
// 2. GET /metrics
// 3. /ws, JSON-RPC over websocket for upgrade requests, over http otherwise
// 4. anything else, JSON-RPC over http
type Server struct {
	scenario  atomic.Value
	router    chi.Router
	startedAt time.Time
}

func NewServer(scenario *Scenario) *Server {
	h := &Server{startedAt: time.Now()}
	h.SetScenario(scenario)

	r := chi.NewRouter()
	r.Get("/health", h.serveHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/ws", h.serveWS)
	r.HandleFunc("/*", h.serveRPC)
	h.router = r

	return h
}

// SetScenario swaps the active scenario. Requests already in flight finish
// with the scenario they started with.
func (h *Server) SetScenario(scenario *Scenario) {
	h.scenario.Store(scenario)
}

func (h *Server) Scenario() *Scenario {
	return h.scenario.Load().(*Scenario)
}

func (h *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(w, req)
}

func (h *Server) serveRPC(w http.ResponseWriter, req *http.Request) {
	ex := &handlerExchange{w: w, req: req}

	if err := h.Scenario().Interceptor().Serve(ex); err != nil {
		logrus.Errorf("Req from %s %s 500 %s", req.RemoteAddr, req.Method, err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(Serialize(NewErrorResponse(nullID, ErrCodeInternal, err.Error())))
	}
}

func (h *Server) serveHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(Serialize(getHealthInfo(h.Scenario(), h.startedAt)))
}

func (h *Server) serveWS(w http.ResponseWriter, req *http.Request) {
	if !websocket.IsWebSocketUpgrade(req) {
		h.serveRPC(w, req)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)

	if err != nil {
		logrus.Error(err)
		return
	}

	if err := h.ServerWS(conn); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logrus.Debugf("ws conn from %s closed: %v", req.RemoteAddr, err)
	}
}

// ServerWS answers each frame with one frame until the peer goes away. A
// transport fault closes the socket, the websocket analogue of an HTTP error.
func (h *Server) ServerWS(conn *websocket.Conn) error {
	defer conn.Close()

	for {
		messageType, r, err := conn.NextReader()
		if err != nil {
			return err
		}

		reqBodyBytes, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		reply := h.Scenario().Interceptor().Respond(reqBodyBytes)

		if reply.Status != http.StatusOK {
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, http.StatusText(reply.Status))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return fmt.Errorf("transport fault %d", reply.Status)
		}

		w, err := conn.NextWriter(messageType)
		if err != nil {
			return err
		}

		if _, err := w.Write(reply.Body); err != nil {
			return err
		}

		if err := w.Close(); err != nil {
			return err
		}
	}
}

type handlerExchange struct {
	w   http.ResponseWriter
	req *http.Request
}

func (e *handlerExchange) URL() string {
	return e.req.URL.String()
}

func (e *handlerExchange) Method() string {
	return e.req.Method
}

func (e *handlerExchange) Body() ([]byte, error) {
	return io.ReadAll(e.req.Body)
}

func (e *handlerExchange) Fulfill(reply *Reply) error {
	for k, vs := range reply.Header {
		for _, v := range vs {
			e.w.Header().Add(k, v)
		}
	}

	e.w.WriteHeader(reply.Status)
	_, err := e.w.Write(reply.Body)

	return err
}

// Passthrough has no network to fall back to inside a server.
func (e *handlerExchange) Passthrough() error {
	e.w.Header().Set("Allow", "POST, OPTIONS")
	e.w.WriteHeader(http.StatusMethodNotAllowed)
	_, _ = e.w.Write([]byte("Method Should Be POST"))

	return nil
}
