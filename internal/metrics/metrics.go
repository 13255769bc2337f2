package metrics

import (
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quiz"

// Metrics holds the Prometheus collectors for the quiz server.
// It implements app.Observer for the room lifecycle.
type Metrics struct {
	Rooms           prometheus.Gauge
	Players         prometheus.Gauge
	Connections     prometheus.Gauge
	GamesStarted    prometheus.Counter
	GamesFinished   prometheus.Counter
	QuestionsClosed prometheus.Counter
	Answers         *prometheus.CounterVec
	Points          prometheus.Histogram
	InboundMessages *prometheus.CounterVec
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers every collector on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "active",
			Help:      "Number of live rooms",
		}),
		Players: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rooms",
			Name:      "players",
			Help:      "Number of players seated in live rooms",
		}),
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Number of open websocket connections",
		}),
		GamesStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "started_total",
			Help:      "Games started",
		}),
		GamesFinished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "finished_total",
			Help:      "Games that reached game over",
		}),
		QuestionsClosed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "questions_closed_total",
			Help:      "Questions closed by all answers, timeout or departures",
		}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "answers_total",
			Help:      "Recorded answers by outcome",
		}, []string{"outcome"}), // correct, wrong, timeout
		Points: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "games",
			Name:      "answer_points",
			Help:      "Points awarded per correct answer",
			Buckets:   prometheus.LinearBuckets(domain.MinPoints, 150, 7),
		}),
		InboundMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "messages_total",
			Help:      "Inbound websocket messages by type",
		}, []string{"type"}),
		RequestCounter: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) RoomOpened(string) { m.Rooms.Inc() }

func (m *Metrics) RoomClosed(string) { m.Rooms.Dec() }

func (m *Metrics) PlayerJoined(string) { m.Players.Inc() }

func (m *Metrics) PlayerLeft(string) { m.Players.Dec() }

func (m *Metrics) GameStarted(string, int) { m.GamesStarted.Inc() }

func (m *Metrics) AnswerRecorded(_ string, correct, timedOut bool, points int) {
	switch {
	case timedOut:
		m.Answers.WithLabelValues("timeout").Inc()
	case correct:
		m.Answers.WithLabelValues("correct").Inc()
		m.Points.Observe(float64(points))
	default:
		m.Answers.WithLabelValues("wrong").Inc()
	}
}

func (m *Metrics) QuestionClosed(string, []domain.Player) { m.QuestionsClosed.Inc() }

func (m *Metrics) GameFinished(string, []domain.Player) { m.GamesFinished.Inc() }
