package http

import (
	"net/http"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/metrics"
	"github.com/Atharva587/MultiplayerQuizNew/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
	log         logrus.FieldLogger
	metrics     *metrics.Metrics
}

// NewWSHandler builds the /ws endpoint. m may be nil.
func NewWSHandler(coordinator *app.Coordinator, allowedOrigins []string, logger logrus.FieldLogger, m *metrics.Metrics) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		log:         logger,
		metrics:     m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeWS upgrades HTTP requests to websockets and feeds every decoded message to the coordinator.
// The connection has no identity until it sends create_room or join_room.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}

	logger := h.log.WithField("remote", r.RemoteAddr)
	c := newClient(conn, logger)
	if h.metrics != nil {
		h.metrics.Connections.Inc()
		defer h.metrics.Connections.Dec()
	}

	go c.writePump()
	c.readPump(func(data []byte) {
		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed and unknown messages are dropped without a reply.
			logger.WithError(err).Debug("dropped client message")
			if h.metrics != nil {
				h.metrics.InboundMessages.WithLabelValues("invalid").Inc()
			}
			return
		}
		if h.metrics != nil {
			h.metrics.InboundMessages.WithLabelValues(string(msg.Type())).Inc()
		}
		h.coordinator.Dispatch(r.Context(), c, msg)
	})

	h.coordinator.Disconnect(c)
	c.Close()
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
