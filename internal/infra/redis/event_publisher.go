package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Event is what subscribers of a room's events channel receive.
type Event struct {
	Type        string        `json:"type"`
	Room        string        `json:"room"`
	Questions   int           `json:"questions,omitempty"`
	Leaderboard []LeaderEntry `json:"leaderboard,omitempty"`
	At          int64         `json:"at"`
}

type LeaderEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

const (
	EventRoomOpened     = "room_opened"
	EventRoomClosed     = "room_closed"
	EventPlayerJoined   = "player_joined"
	EventPlayerLeft     = "player_left"
	EventGameStarted    = "game_started"
	EventQuestionClosed = "question_closed"
	EventGameFinished   = "game_finished"
)

const (
	defaultEventBuffer = 256
	publishTimeout     = 2 * time.Second
)

// EventPublisher mirrors room activity into Redis: a leaderboard sorted set per room
// and a pub/sub channel of lifecycle events. It implements app.Observer.
//
// Observer callbacks run under the room lock, so they only enqueue; Run drains the
// queue and talks to Redis. When the queue is full events are dropped.
type EventPublisher struct {
	app.NopObserver

	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time
	queue  chan Event
}

func NewEventPublisher(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger, buffer int) *EventPublisher {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventPublisher{
		client: client,
		ttl:    ttl,
		log:    logger,
		now:    time.Now,
		queue:  make(chan Event, buffer),
	}
}

// Run publishes queued events until ctx is done, then flushes what is left.
func (p *EventPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case ev := <-p.queue:
			p.publish(ev)
		}
	}
}

func (p *EventPublisher) drain() {
	for {
		select {
		case ev := <-p.queue:
			p.publish(ev)
		default:
			return
		}
	}
}

func (p *EventPublisher) RoomOpened(code string) {
	p.enqueue(Event{Type: EventRoomOpened, Room: code})
}

func (p *EventPublisher) RoomClosed(code string) {
	p.enqueue(Event{Type: EventRoomClosed, Room: code})
}

func (p *EventPublisher) PlayerJoined(code string) {
	p.enqueue(Event{Type: EventPlayerJoined, Room: code})
}

func (p *EventPublisher) PlayerLeft(code string) {
	p.enqueue(Event{Type: EventPlayerLeft, Room: code})
}

func (p *EventPublisher) GameStarted(code string, questionCount int) {
	p.enqueue(Event{Type: EventGameStarted, Room: code, Questions: questionCount})
}

func (p *EventPublisher) QuestionClosed(code string, leaderboard []domain.Player) {
	p.enqueue(Event{Type: EventQuestionClosed, Room: code, Leaderboard: entries(leaderboard)})
}

func (p *EventPublisher) GameFinished(code string, leaderboard []domain.Player) {
	p.enqueue(Event{Type: EventGameFinished, Room: code, Leaderboard: entries(leaderboard)})
}

func (p *EventPublisher) enqueue(ev Event) {
	ev.At = p.now().UnixMilli()
	select {
	case p.queue <- ev:
	default:
		p.log.WithFields(logrus.Fields{"room": ev.Room, "event": ev.Type}).Warn("event queue full, dropping")
	}
}

func (p *EventPublisher) publish(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	raw, err := json.Marshal(ev)
	if err != nil {
		p.log.WithError(err).Error("encode room event")
		return
	}

	pipe := p.client.Pipeline()
	switch ev.Type {
	case EventGameStarted:
		pipe.Del(ctx, LeaderboardKey(ev.Room))
	case EventQuestionClosed, EventGameFinished:
		members := make([]redis.Z, 0, len(ev.Leaderboard))
		for _, e := range ev.Leaderboard {
			members = append(members, redis.Z{Score: float64(e.Score), Member: e.PlayerID})
		}
		if len(members) > 0 {
			pipe.ZAdd(ctx, LeaderboardKey(ev.Room), members...)
			if p.ttl > 0 {
				pipe.Expire(ctx, LeaderboardKey(ev.Room), p.ttl)
			}
		}
	case EventRoomClosed:
		pipe.Del(ctx, LeaderboardKey(ev.Room))
	}
	pipe.Publish(ctx, EventsChannel(ev.Room), raw)

	if _, err := pipe.Exec(ctx); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{"room": ev.Room, "event": ev.Type}).Warn("publish room event")
	}
}

func entries(players []domain.Player) []LeaderEntry {
	out := make([]LeaderEntry, 0, len(players))
	for _, pl := range players {
		out = append(out, LeaderEntry{PlayerID: pl.ID, Name: pl.Name, Score: pl.Score})
	}
	return out
}
