package redis

import (
	"context"
	"sync"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// markerTimeout bounds every Redis call the store makes.
const markerTimeout = 500 * time.Millisecond

// releaseMarker deletes a room marker only while it still carries our owner token.
var releaseMarker = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// refreshMarker extends our marker, or re-claims it when it has expired.
// Returns 0 when another owner holds the code.
var refreshMarker = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if owner == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if not owner then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	return 1
end
return 0
`)

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Rooms themselves live in a local map; the coordinator's per-room locks
//     and broadcast logic stay in process. Get never touches Redis.
//   - Redis holds a marker per room whose value is this instance's owner token.
//     Insert claims it with SETNX, so two instances sharing a Redis never hand
//     out the same code. Delete only removes a marker we still own.
//   - Run keeps markers of live rooms from expiring while a lobby sits idle.
//   - A Redis outage degrades to local-only uniqueness rather than refusing rooms.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	owner  string
	log    logrus.FieldLogger

	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration, logger logrus.FieldLogger) *RoomStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomStore{
		client: client,
		ttl:    ttl,
		owner:  uuid.New().String(),
		log:    logger,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) Insert(room *app.Room) bool {
	code := room.Code()
	if _, taken := s.Get(code); taken {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	claimed, err := s.client.SetNX(ctx, RoomKey(code), s.owner, s.ttl).Result()
	cancel()
	if err == nil && !claimed {
		return false
	}
	if err != nil {
		s.log.WithError(err).WithField("room", code).Warn("room marker not claimed, code is only unique locally")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A marker we just claimed cannot belong to a local room, since a live local
	// room would have made SETNX fail.
	if _, taken := s.rooms[code]; taken {
		return false
	}
	s.rooms[code] = room
	return true
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	_, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	// best-effort; the TTL cleans up if this fails
	if err := releaseMarker.Run(ctx, s.client, []string{RoomKey(code)}, s.owner).Err(); err != nil {
		s.log.WithError(err).WithField("room", code).Debug("release room marker")
	}
}

func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Run refreshes the markers of live rooms every third of the TTL until ctx is done.
func (s *RoomStore) Run(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	ticker := time.NewTicker(s.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh extends every live room's marker once.
func (s *RoomStore) Refresh(ctx context.Context) {
	s.mu.RLock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	s.mu.RUnlock()

	for _, code := range codes {
		callCtx, cancel := context.WithTimeout(ctx, markerTimeout)
		held, err := refreshMarker.Run(callCtx, s.client, []string{RoomKey(code)}, s.owner, s.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			s.log.WithError(err).WithField("room", code).Debug("refresh room marker")
		case held == 0:
			s.log.WithField("room", code).Warn("room code is claimed by another instance")
		}
	}
}

// RoomKey is the liveness marker for a room.
func RoomKey(code string) string {
	return "quiz:room:" + code
}

// LeaderboardKey is the sorted set mirroring a room's scores.
func LeaderboardKey(code string) string {
	return RoomKey(code) + ":leaderboard"
}

// EventsChannel is the pub/sub channel carrying a room's lifecycle events.
func EventsChannel(code string) string {
	return RoomKey(code) + ":events"
}
