package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/infra/memory"
	"github.com/Atharva587/MultiplayerQuizNew/internal/protocol"
	"github.com/sirupsen/logrus"
)

// recorder is a Conn that keeps everything it was sent.
type recorder struct {
	mu   sync.Mutex
	msgs []protocol.Outbound
}

func (r *recorder) Send(msg protocol.Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) ofType(typ protocol.MessageType) []protocol.Outbound {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Outbound
	for _, m := range r.msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func (r *recorder) count(typ protocol.MessageType) int {
	return len(r.ofType(typ))
}

func (r *recorder) last(t *testing.T, typ protocol.MessageType) protocol.Outbound {
	t.Helper()
	msgs := r.ofType(typ)
	if len(msgs) == 0 {
		t.Fatalf("no %s message received", typ)
	}
	return msgs[len(msgs)-1]
}

// waitFor polls until conn has received n messages of typ.
func waitFor(t *testing.T, conn *recorder, typ protocol.MessageType, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if conn.count(typ) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d %s messages, got %d", n, typ, conn.count(typ))
}

type failingSupply struct{}

func (failingSupply) DefaultQuestions(context.Context) ([]domain.Question, error) {
	return nil, errors.New("library offline")
}

// manualTimeouts records armed deadlines and fires them only when told to.
type manualTimeouts struct {
	mu    sync.Mutex
	seq   uint64
	live  map[string]uint64
	fires []func()
}

func newManualTimeouts() *manualTimeouts {
	return &manualTimeouts{live: make(map[string]uint64)}
}

func (m *manualTimeouts) Arm(key string, _ time.Duration, fire func(token uint64)) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	token := m.seq
	m.live[key] = token
	m.fires = append(m.fires, func() { fire(token) })
	return token
}

func (m *manualTimeouts) Cancel(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.live, key)
}

func (m *manualTimeouts) Claim(key string, token uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live[key] != token {
		return false
	}
	delete(m.live, key)
	return true
}

func (m *manualTimeouts) armed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fires)
}

// fire runs the i-th armed callback as if its timer expired.
func (m *manualTimeouts) fire(i int) {
	m.mu.Lock()
	f := m.fires[i]
	m.mu.Unlock()
	f()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestCoordinator(opts app.Options) *app.Coordinator {
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	supply := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(domain.BuiltinQuestions()), 5*time.Minute)
	return app.NewCoordinator(memory.NewRoomStore(), supply, opts)
}

func customQuestions() []domain.Question {
	return []domain.Question{
		{ID: 101, Question: "Largest bone?", Options: []string{"Femur", "Tibia", "Ulna", "Rib"}, CorrectIndex: 0, Category: "Bones"},
		{ID: 102, Question: "Heart chambers?", Options: []string{"2", "3", "4", "5"}, CorrectIndex: 2, Category: "Cardio"},
	}
}

// table is a host with its guests already seated in one room.
type table struct {
	code    string
	host    *recorder
	hostID  string
	guests  []*recorder
	guestID []string
}

func seat(t *testing.T, c *app.Coordinator, guests int) table {
	t.Helper()
	ctx := context.Background()
	tb := table{host: &recorder{}}
	id, err := c.CreateRoom(ctx, tb.host, protocol.CreateRoom{PlayerName: "Host"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	tb.hostID = id
	created := tb.host.last(t, protocol.TypeRoomCreated).Payload.(protocol.RoomWithPlayerPayload)
	tb.code = created.Room.Code

	for i := 0; i < guests; i++ {
		conn := &recorder{}
		gid, err := c.JoinRoom(ctx, conn, protocol.JoinRoom{RoomCode: tb.code, PlayerName: "Guest"})
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		tb.guests = append(tb.guests, conn)
		tb.guestID = append(tb.guestID, gid)
	}
	return tb
}

func (tb table) everyone() []*recorder {
	return append([]*recorder{tb.host}, tb.guests...)
}

func startCustom(t *testing.T, c *app.Coordinator, tb table) {
	t.Helper()
	ctx := context.Background()
	if err := c.SetCustomQuestions(ctx, tb.host, protocol.SetCustomQuestions{RoomCode: tb.code, Questions: customQuestions(), UseCustom: true}); err != nil {
		t.Fatalf("set questions: %v", err)
	}
	if err := c.StartGame(ctx, tb.host, protocol.StartGame{RoomCode: tb.code}); err != nil {
		t.Fatalf("start game: %v", err)
	}
}
