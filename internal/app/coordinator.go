package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/protocol"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options tunes a Coordinator. Zero values fall back to production defaults.
type Options struct {
	QuestionTimeout time.Duration
	Timeouts        Timeouts
	Observer        Observer
	Logger          logrus.FieldLogger
	Clock           func() time.Time
	NewPlayerID     func() string
	NewRoomCode     func() (string, error)
}

// Coordinator owns every live room and drives the game state machine.
type Coordinator struct {
	rooms    RoomRepository
	supply   QuestionSupply
	registry *Registry
	ledger   *AnswerLedger
	timeouts Timeouts
	observer Observer
	log      logrus.FieldLogger

	questionTimeout time.Duration
	now             func() time.Time
	newPlayerID     func() string
	newRoomCode     func() (string, error)
}

// DefaultQuestionTimeout is the server side deadline for one question.
const DefaultQuestionTimeout = (domain.QuestionTimeLimit + domain.ServerTimeoutBuffer) * time.Second

func NewCoordinator(rooms RoomRepository, supply QuestionSupply, opts Options) *Coordinator {
	c := &Coordinator{
		rooms:           rooms,
		supply:          supply,
		registry:        NewRegistry(),
		ledger:          NewAnswerLedger(),
		timeouts:        opts.Timeouts,
		observer:        opts.Observer,
		log:             opts.Logger,
		questionTimeout: opts.QuestionTimeout,
		now:             opts.Clock,
		newPlayerID:     opts.NewPlayerID,
		newRoomCode:     opts.NewRoomCode,
	}
	if c.timeouts == nil {
		c.timeouts = NewTimeoutScheduler()
	}
	if c.observer == nil {
		c.observer = NopObserver{}
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.questionTimeout <= 0 {
		c.questionTimeout = DefaultQuestionTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newPlayerID == nil {
		c.newPlayerID = func() string { return uuid.New().String() }
	}
	if c.newRoomCode == nil {
		c.newRoomCode = GenerateRoomCode
	}
	return c
}

// Dispatch routes a decoded client message to its handler. User-facing failures are
// answered with an error message on conn; everything else is logged and dropped.
func (c *Coordinator) Dispatch(ctx context.Context, conn Conn, msg protocol.Inbound) {
	var err error
	switch m := msg.(type) {
	case protocol.CreateRoom:
		_, err = c.CreateRoom(ctx, conn, m)
	case protocol.JoinRoom:
		_, err = c.JoinRoom(ctx, conn, m)
	case protocol.SetCustomQuestions:
		err = c.SetCustomQuestions(ctx, conn, m)
	case protocol.StartGame:
		err = c.StartGame(ctx, conn, m)
	case protocol.Answer:
		err = c.Answer(ctx, conn, m)
	case protocol.NextQuestion:
		err = c.NextQuestion(ctx, conn, m)
	default:
		err = fmt.Errorf("%w: %T", protocol.ErrUnknownType, msg)
	}
	if err == nil {
		return
	}

	entry := c.log.WithError(err).WithField("type", msg.Type())
	if text, ok := domain.UserMessage(err); ok {
		entry.Debug("rejected client message")
		_ = conn.Send(protocol.Error(text))
		return
	}
	if errors.Is(err, domain.ErrRoomCodeExhausted) {
		entry.Error("room creation failed")
		return
	}
	entry.Debug("ignored client message")
}

// CreateRoom opens a room with the caller as host and returns the new player id.
func (c *Coordinator) CreateRoom(_ context.Context, conn Conn, msg protocol.CreateRoom) (string, error) {
	playerID := c.newPlayerID()
	host := domain.Player{ID: playerID, Name: msg.PlayerName}

	var room *Room
	for attempt := 0; attempt < maxRoomCodeAttempts; attempt++ {
		code, err := c.newRoomCode()
		if err != nil {
			return "", fmt.Errorf("generate room code: %w", err)
		}
		candidate := NewRoom(code, host)
		candidate.mu.Lock()
		if c.rooms.Insert(candidate) {
			room = candidate
			break
		}
		candidate.mu.Unlock()
	}
	if room == nil {
		return "", domain.ErrRoomCodeExhausted
	}

	prev, rebound := c.registry.Bind(conn, Identity{RoomCode: room.code, PlayerID: playerID})
	_ = conn.Send(protocol.RoomCreated(room.state.Clone(), playerID))
	c.observer.RoomOpened(room.code)
	c.observer.PlayerJoined(room.code)
	c.log.WithFields(logrus.Fields{"room": room.code, "player": playerID}).Info("room created")
	room.mu.Unlock()

	if rebound {
		c.removePlayer(prev)
	}
	return playerID, nil
}

// JoinRoom adds the caller to an open room and returns the new player id.
func (c *Coordinator) JoinRoom(_ context.Context, conn Conn, msg protocol.JoinRoom) (string, error) {
	room, ok := c.rooms.Get(msg.RoomCode)
	if !ok {
		return "", domain.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return "", domain.ErrRoomNotFound
	}
	if !room.state.Status.Joinable() {
		room.mu.Unlock()
		return "", domain.ErrGameAlreadyStarted
	}
	if len(room.state.Players) >= domain.MaxPlayers {
		room.mu.Unlock()
		return "", domain.ErrRoomFull
	}

	playerID := c.newPlayerID()
	room.state.Players = append(room.state.Players, domain.Player{ID: playerID, Name: msg.PlayerName})
	prev, rebound := c.registry.Bind(conn, Identity{RoomCode: room.code, PlayerID: playerID})

	snapshot := room.state.Clone()
	_ = conn.Send(protocol.PlayerJoined(snapshot, playerID))
	c.broadcastLocked(room, protocol.RoomUpdate(snapshot), playerID)
	c.observer.PlayerJoined(room.code)
	c.log.WithFields(logrus.Fields{"room": room.code, "player": playerID}).Info("player joined")
	room.mu.Unlock()

	if rebound {
		c.removePlayer(prev)
	}
	return playerID, nil
}

// SetCustomQuestions replaces the room's custom question set. Host only.
func (c *Coordinator) SetCustomQuestions(ctx context.Context, conn Conn, msg protocol.SetCustomQuestions) error {
	room, _, err := c.lockHostRoom(conn, msg.RoomCode)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	room.state.CustomQuestions = append([]domain.Question{}, msg.Questions...)
	room.state.UseCustomQuestions = msg.UseCustom

	count := len(msg.Questions)
	if !msg.UseCustom {
		defaults, err := c.supply.DefaultQuestions(ctx)
		if err != nil {
			c.log.WithError(err).WithField("room", room.code).Warn("load default questions")
		}
		count = len(defaults)
	}
	c.broadcastLocked(room, protocol.QuestionsUpdated(count, msg.UseCustom), "")
	return nil
}

// StartGame snapshots the effective question list and opens question 0. Host only.
func (c *Coordinator) StartGame(ctx context.Context, conn Conn, msg protocol.StartGame) error {
	room, _, err := c.lockHostRoom(conn, msg.RoomCode)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	questions, err := c.effectiveQuestions(ctx, &room.state)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoQuestionsAvailable, err)
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestionsAvailable
	}

	room.questions = questions
	room.state.Status = domain.StatusPlaying
	room.state.CurrentQuestionIndex = 0
	room.state.QuestionStartTime = c.stamp()

	ids := make([]string, 0, len(room.state.Players))
	for i := range room.state.Players {
		p := &room.state.Players[i]
		p.Score = 0
		p.ResetRound()
		ids = append(ids, p.ID)
	}
	c.ledger.Open(room.code, ids)

	c.broadcastLocked(room, protocol.Question(questions[0], 0, len(questions)), "")
	c.armTimeoutLocked(room)
	c.observer.GameStarted(room.code, len(questions))
	c.log.WithFields(logrus.Fields{"room": room.code, "questions": len(questions)}).Info("game started")
	return nil
}

// Answer scores the caller's answer for the active question.
func (c *Coordinator) Answer(_ context.Context, conn Conn, msg protocol.Answer) error {
	room, id, err := c.lockMemberRoom(conn, msg.RoomCode)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	player := &room.state.Players[room.state.PlayerIndex(id.PlayerID)]
	if player.HasAnswered {
		return domain.ErrAlreadyAnswered
	}
	if room.state.Status != domain.StatusPlaying {
		return domain.ErrNoActiveQuestion
	}
	question, ok := room.currentQuestion()
	if !ok {
		return domain.ErrNoActiveQuestion
	}
	if question.ID != msg.QuestionID {
		return domain.ErrStaleQuestion
	}

	remaining := domain.ClampTimeRemaining(msg.TimeRemaining)
	correct := msg.AnswerIndex != domain.TimeoutAnswer && msg.AnswerIndex == question.CorrectIndex
	points := domain.Score(remaining, correct)

	player.RecordAnswer(correct, remaining, points)
	c.ledger.Append(room.code, player.ID, domain.AnswerRecord{
		QuestionIndex:  room.state.CurrentQuestionIndex,
		QuestionText:   question.Question,
		SelectedAnswer: msg.AnswerIndex,
		CorrectAnswer:  question.CorrectIndex,
		IsCorrect:      correct,
		Points:         points,
		TimeRemaining:  remaining,
	})
	_ = conn.Send(protocol.AnswerResult(correct, points, question.CorrectIndex))
	c.observer.AnswerRecorded(room.code, correct, msg.AnswerIndex == domain.TimeoutAnswer, points)

	if room.state.AllAnswered() {
		c.closeQuestionLocked(room)
	}
	return nil
}

// NextQuestion advances to the next question or ends the game. Host only.
func (c *Coordinator) NextQuestion(_ context.Context, conn Conn, msg protocol.NextQuestion) error {
	room, _, err := c.lockHostRoom(conn, msg.RoomCode)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if s := room.state.Status; s != domain.StatusPlaying && s != domain.StatusQuestionResults {
		return domain.ErrNoActiveQuestion
	}

	room.state.CurrentQuestionIndex++
	if room.state.CurrentQuestionIndex >= len(room.questions) {
		c.finishGameLocked(room)
		return nil
	}

	room.state.Status = domain.StatusPlaying
	room.state.QuestionStartTime = c.stamp()
	for i := range room.state.Players {
		room.state.Players[i].ResetRound()
	}
	idx := room.state.CurrentQuestionIndex
	c.broadcastLocked(room, protocol.Question(room.questions[idx], idx, len(room.questions)), "")
	c.armTimeoutLocked(room)
	return nil
}

// Disconnect releases the connection's player, migrating host or tearing the room down.
func (c *Coordinator) Disconnect(conn Conn) {
	id, ok := c.registry.Unbind(conn)
	if !ok {
		return
	}
	c.removePlayer(id)
}

func (c *Coordinator) removePlayer(id Identity) {
	room, ok := c.rooms.Get(id.RoomCode)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return
	}
	idx := room.state.PlayerIndex(id.PlayerID)
	if idx < 0 {
		return
	}

	wasHost := room.state.Players[idx].IsHost
	room.state.Players = append(room.state.Players[:idx], room.state.Players[idx+1:]...)
	c.observer.PlayerLeft(room.code)
	logger := c.log.WithFields(logrus.Fields{"room": room.code, "player": id.PlayerID})

	if len(room.state.Players) == 0 {
		room.closed = true
		c.timeouts.Cancel(room.code)
		c.rooms.Delete(room.code)
		c.ledger.Discard(room.code)
		c.observer.RoomClosed(room.code)
		logger.Info("room closed")
		return
	}
	if wasHost {
		room.state.Players[0].IsHost = true
		logger.WithField("host", room.state.Players[0].ID).Info("host migrated")
	}

	c.broadcastLocked(room, protocol.PlayerLeft(room.state.Clone()), "")
	if room.state.Status == domain.StatusPlaying && room.state.AllAnswered() {
		c.closeQuestionLocked(room)
	}
}

// onTimeout forces every unanswered player into a timed-out result.
func (c *Coordinator) onTimeout(code string, token uint64) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if !c.timeouts.Claim(code, token) {
		return
	}
	if room.closed || room.state.Status != domain.StatusPlaying {
		return
	}
	question, ok := room.currentQuestion()
	if !ok {
		return
	}

	forced := 0
	for i := range room.state.Players {
		p := &room.state.Players[i]
		if p.HasAnswered {
			continue
		}
		p.RecordAnswer(false, 0, 0)
		c.ledger.Append(code, p.ID, domain.AnswerRecord{
			QuestionIndex:  room.state.CurrentQuestionIndex,
			QuestionText:   question.Question,
			SelectedAnswer: domain.TimeoutAnswer,
			CorrectAnswer:  question.CorrectIndex,
		})
		if conn, ok := c.registry.Lookup(p.ID); ok {
			_ = conn.Send(protocol.AnswerResult(false, 0, question.CorrectIndex))
		}
		c.observer.AnswerRecorded(code, false, true, 0)
		forced++
	}
	if forced > 0 {
		c.log.WithFields(logrus.Fields{"room": code, "forced": forced}).Debug("question timed out")
		c.closeQuestionLocked(room)
	}
}

func (c *Coordinator) closeQuestionLocked(room *Room) {
	c.timeouts.Cancel(room.code)
	room.state.Status = domain.StatusQuestionResults
	lb := Leaderboard(room.state.Players)
	c.broadcastLocked(room, protocol.QuestionResults(lb), "")
	c.observer.QuestionClosed(room.code, lb)
}

func (c *Coordinator) finishGameLocked(room *Room) {
	c.timeouts.Cancel(room.code)
	room.state.Status = domain.StatusFinished
	lb := Leaderboard(room.state.Players)
	histories := c.ledger.Histories(room.code, room.state.Players)
	questions := append([]domain.Question(nil), room.questions...)
	c.broadcastLocked(room, protocol.GameOver(lb, histories, questions), "")
	c.ledger.Discard(room.code)
	c.observer.GameFinished(room.code, lb)
	c.log.WithField("room", room.code).Info("game finished")
}

func (c *Coordinator) armTimeoutLocked(room *Room) {
	code := room.code
	c.timeouts.Arm(code, c.questionTimeout, func(token uint64) {
		c.onTimeout(code, token)
	})
}

// broadcastLocked sends msg to every player in the room except skipPlayerID.
func (c *Coordinator) broadcastLocked(room *Room, msg protocol.Outbound, skipPlayerID string) {
	for _, p := range room.state.Players {
		if p.ID == skipPlayerID {
			continue
		}
		if conn, ok := c.registry.Lookup(p.ID); ok {
			_ = conn.Send(msg)
		}
	}
}

// lockMemberRoom resolves conn to its room and returns it locked.
func (c *Coordinator) lockMemberRoom(conn Conn, roomCode string) (*Room, Identity, error) {
	id, ok := c.registry.Resolve(conn)
	if !ok || id.RoomCode != roomCode {
		return nil, Identity{}, domain.ErrUnknownConnection
	}
	room, ok := c.rooms.Get(roomCode)
	if !ok {
		return nil, Identity{}, domain.ErrUnknownConnection
	}
	room.mu.Lock()
	if room.closed || room.state.PlayerIndex(id.PlayerID) < 0 {
		room.mu.Unlock()
		return nil, Identity{}, domain.ErrUnknownConnection
	}
	return room, id, nil
}

func (c *Coordinator) lockHostRoom(conn Conn, roomCode string) (*Room, Identity, error) {
	room, id, err := c.lockMemberRoom(conn, roomCode)
	if err != nil {
		return nil, Identity{}, err
	}
	if !room.state.Players[room.state.PlayerIndex(id.PlayerID)].IsHost {
		room.mu.Unlock()
		return nil, Identity{}, domain.ErrNotHost
	}
	return room, id, nil
}

func (c *Coordinator) effectiveQuestions(ctx context.Context, state *domain.GameRoom) ([]domain.Question, error) {
	if state.UseCustomQuestions && len(state.CustomQuestions) > 0 {
		return append([]domain.Question(nil), state.CustomQuestions...), nil
	}
	defaults, err := c.supply.DefaultQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), defaults...), nil
}

func (c *Coordinator) stamp() *int64 {
	ms := c.now().UnixMilli()
	return &ms
}

// Room returns a snapshot of a live room.
func (c *Coordinator) Room(code string) (domain.GameRoom, bool) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return domain.GameRoom{}, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return domain.GameRoom{}, false
	}
	return room.state.Clone(), true
}

// RoomExists reports whether code names a live room.
func (c *Coordinator) RoomExists(code string) bool {
	_, ok := c.Room(code)
	return ok
}

// Stats is a point-in-time count of live rooms and bound connections.
type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

func (c *Coordinator) Stats() Stats {
	return Stats{Rooms: c.rooms.Len(), Players: c.registry.Len()}
}

// Leaderboard orders players by score, highest first, keeping join order on ties.
func Leaderboard(players []domain.Player) []domain.Player {
	out := append([]domain.Player(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
