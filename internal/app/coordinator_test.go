package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/infra/memory"
	"github.com/Atharva587/MultiplayerQuizNew/internal/protocol"
)

func TestCreateRoomMakesCallerHost(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	host := &recorder{}

	playerID, err := c.CreateRoom(context.Background(), host, protocol.CreateRoom{PlayerName: "Ada"})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	payload := host.last(t, protocol.TypeRoomCreated).Payload.(protocol.RoomWithPlayerPayload)
	if payload.PlayerID != playerID {
		t.Fatalf("expected player id %s, got %s", playerID, payload.PlayerID)
	}
	room := payload.Room
	if len(room.Code) != domain.RoomCodeLength {
		t.Fatalf("expected 6 char code, got %q", room.Code)
	}
	for _, ch := range room.Code {
		if !strings.ContainsRune(domain.RoomCodeAlphabet, ch) {
			t.Fatalf("code %q has symbol outside alphabet", room.Code)
		}
	}
	if room.Status != domain.StatusWaiting || len(room.Players) != 1 || !room.Players[0].IsHost {
		t.Fatalf("unexpected room %+v", room)
	}
	if room.UseCustomQuestions || room.CustomQuestions == nil {
		t.Fatalf("expected empty custom question set, got %+v", room.CustomQuestions)
	}
	if got := c.Stats(); got.Rooms != 1 || got.Players != 1 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestRoomCodesRetryOnCollision(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	c := newTestCoordinator(app.Options{NewRoomCode: func() (string, error) {
		code := codes[0]
		if len(codes) > 1 {
			codes = codes[1:]
		}
		return code, nil
	}})

	ctx := context.Background()
	if _, err := c.CreateRoom(ctx, &recorder{}, protocol.CreateRoom{PlayerName: "A"}); err != nil {
		t.Fatalf("first room: %v", err)
	}
	second := &recorder{}
	if _, err := c.CreateRoom(ctx, second, protocol.CreateRoom{PlayerName: "B"}); err != nil {
		t.Fatalf("second room: %v", err)
	}
	code := second.last(t, protocol.TypeRoomCreated).Payload.(protocol.RoomWithPlayerPayload).Room.Code
	if code != "BBBBBB" {
		t.Fatalf("expected collision retry to yield BBBBBB, got %s", code)
	}

	_, err := c.CreateRoom(ctx, &recorder{}, protocol.CreateRoom{PlayerName: "C"})
	if !errors.Is(err, domain.ErrRoomCodeExhausted) {
		t.Fatalf("expected exhausted codes, got %v", err)
	}
}

func TestGeneratedRoomCodesAreWellFormed(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := app.GenerateRoomCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != domain.RoomCodeLength || strings.ContainsAny(code, "IO01") {
			t.Fatalf("bad code %q", code)
		}
	}
}

func TestJoinRoomBroadcastsToOthers(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)

	joined := tb.guests[0].last(t, protocol.TypePlayerJoined).Payload.(protocol.RoomWithPlayerPayload)
	if joined.PlayerID != tb.guestID[0] || len(joined.Room.Players) != 2 || joined.Room.Players[1].IsHost {
		t.Fatalf("unexpected join payload %+v", joined)
	}
	if tb.host.count(protocol.TypeRoomUpdate) != 1 {
		t.Fatalf("host should see one room_update")
	}
	if tb.guests[0].count(protocol.TypeRoomUpdate) != 0 {
		t.Fatalf("joiner must not receive its own room_update")
	}
}

func TestJoinRoomRejectsNinthPlayer(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, domain.MaxPlayers-1)

	late := &recorder{}
	c.Dispatch(context.Background(), late, protocol.JoinRoom{RoomCode: tb.code, PlayerName: "Late"})

	errMsg := late.last(t, protocol.TypeError).Payload.(protocol.ErrorPayload)
	if errMsg.Message != "Room is full. Maximum 8 players allowed." {
		t.Fatalf("unexpected error %q", errMsg.Message)
	}
	room, _ := c.Room(tb.code)
	if len(room.Players) != domain.MaxPlayers {
		t.Fatalf("expected 8 players, got %d", len(room.Players))
	}
}

func TestJoinRoomAfterStartFails(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	startCustom(t, c, tb)

	_, err := c.JoinRoom(context.Background(), &recorder{}, protocol.JoinRoom{RoomCode: tb.code, PlayerName: "Late"})
	if !errors.Is(err, domain.ErrGameAlreadyStarted) {
		t.Fatalf("expected game already started, got %v", err)
	}
	room, _ := c.Room(tb.code)
	if len(room.Players) != 2 {
		t.Fatalf("player list changed: %d", len(room.Players))
	}
}

func TestJoinUnknownRoomSendsError(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	conn := &recorder{}
	c.Dispatch(context.Background(), conn, protocol.JoinRoom{RoomCode: "ZZZZZZ", PlayerName: "Lost"})

	errMsg := conn.last(t, protocol.TypeError).Payload.(protocol.ErrorPayload)
	if errMsg.Message != "Room not found. Please check the code and try again." {
		t.Fatalf("unexpected error %q", errMsg.Message)
	}
}

func TestSetCustomQuestionsBroadcastsCount(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	ctx := context.Background()

	if err := c.SetCustomQuestions(ctx, tb.host, protocol.SetCustomQuestions{RoomCode: tb.code, Questions: customQuestions(), UseCustom: true}); err != nil {
		t.Fatalf("set questions: %v", err)
	}
	got := tb.guests[0].last(t, protocol.TypeQuestionsUpdated).Payload.(protocol.QuestionsUpdatedPayload)
	if got.QuestionCount != 2 || !got.UseCustom {
		t.Fatalf("unexpected update %+v", got)
	}

	if err := c.SetCustomQuestions(ctx, tb.host, protocol.SetCustomQuestions{RoomCode: tb.code, Questions: customQuestions(), UseCustom: false}); err != nil {
		t.Fatalf("set questions: %v", err)
	}
	got = tb.host.last(t, protocol.TypeQuestionsUpdated).Payload.(protocol.QuestionsUpdatedPayload)
	if got.QuestionCount != len(domain.BuiltinQuestions()) || got.UseCustom {
		t.Fatalf("expected default count, got %+v", got)
	}
}

func TestHostOnlyActionsAreSilentForGuests(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	ctx := context.Background()

	err := c.StartGame(ctx, tb.guests[0], protocol.StartGame{RoomCode: tb.code})
	if !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected not host, got %v", err)
	}
	c.Dispatch(ctx, tb.guests[0], protocol.SetCustomQuestions{RoomCode: tb.code, Questions: customQuestions(), UseCustom: true})
	c.Dispatch(ctx, tb.guests[0], protocol.NextQuestion{RoomCode: tb.code})

	for _, conn := range tb.everyone() {
		if conn.count(protocol.TypeQuestion) != 0 || conn.count(protocol.TypeQuestionsUpdated) != 0 || conn.count(protocol.TypeError) != 0 {
			t.Fatalf("guest actions leaked: %+v", conn.msgs)
		}
	}
}

func TestMessagesFromUnboundConnectionAreDropped(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 0)
	stranger := &recorder{}

	err := c.StartGame(context.Background(), stranger, protocol.StartGame{RoomCode: tb.code})
	if !errors.Is(err, domain.ErrUnknownConnection) {
		t.Fatalf("expected unknown connection, got %v", err)
	}
	c.Dispatch(context.Background(), stranger, protocol.Answer{RoomCode: tb.code, QuestionID: 1})
	if len(stranger.msgs) != 0 {
		t.Fatalf("stranger should hear nothing, got %+v", stranger.msgs)
	}
}

func TestStartGameWithoutQuestionsTellsHostOnly(t *testing.T) {
	c := app.NewCoordinator(memory.NewRoomStore(), failingSupply{}, app.Options{Logger: quietLogger()})
	tb := seat(t, c, 1)

	c.Dispatch(context.Background(), tb.host, protocol.StartGame{RoomCode: tb.code})

	errMsg := tb.host.last(t, protocol.TypeError).Payload.(protocol.ErrorPayload)
	if errMsg.Message != "No questions available. Add custom questions or use default." {
		t.Fatalf("unexpected error %q", errMsg.Message)
	}
	if tb.guests[0].count(protocol.TypeError) != 0 {
		t.Fatalf("guest must not receive the host error")
	}
	room, _ := c.Room(tb.code)
	if room.Status != domain.StatusWaiting {
		t.Fatalf("room should still be waiting, got %s", room.Status)
	}
}

func TestStartGameUsesDefaultsWhenCustomEmpty(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	ctx := context.Background()

	_ = c.SetCustomQuestions(ctx, tb.host, protocol.SetCustomQuestions{RoomCode: tb.code, UseCustom: true})
	if err := c.StartGame(ctx, tb.host, protocol.StartGame{RoomCode: tb.code}); err != nil {
		t.Fatalf("start: %v", err)
	}
	q := tb.guests[0].last(t, protocol.TypeQuestion).Payload.(protocol.QuestionPayload)
	if q.TotalQuestions != 3 || q.Question.ID != 1 || q.QuestionIndex != 0 {
		t.Fatalf("expected builtin question 1 of 3, got %+v", q)
	}
}

func TestAnswerGuards(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	ctx := context.Background()

	err := c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 20})
	if !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected no active question before start, got %v", err)
	}

	startCustom(t, c, tb)
	err = c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 102, AnswerIndex: 2, TimeRemaining: 20})
	if !errors.Is(err, domain.ErrStaleQuestion) {
		t.Fatalf("expected stale question, got %v", err)
	}
	if err := c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 99}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	res := tb.host.last(t, protocol.TypeAnswerResult).Payload.(protocol.AnswerResultPayload)
	if !res.Correct || res.Points != 1000 || res.CorrectIndex != 0 {
		t.Fatalf("expected clamped full score, got %+v", res)
	}
	err = c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 5})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected already answered, got %v", err)
	}
	if tb.guests[0].count(protocol.TypeAnswerResult) != 0 {
		t.Fatalf("answer results are private")
	}
}

func TestAllAnsweredClosesQuestionOnce(t *testing.T) {
	c := newTestCoordinator(app.Options{QuestionTimeout: 40 * time.Millisecond})
	tb := seat(t, c, 2)
	startCustom(t, c, tb)
	ctx := context.Background()

	conns := tb.everyone()
	for i, conn := range conns {
		if err := c.Answer(ctx, conn, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: i % 2, TimeRemaining: 10}); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	for i, conn := range conns {
		if n := conn.count(protocol.TypeQuestionResults); n != 1 {
			t.Fatalf("conn %d saw %d question_results", i, n)
		}
		if n := conn.count(protocol.TypeAnswerResult); n != 1 {
			t.Fatalf("conn %d was forced by the timeout: %d answer results", i, n)
		}
	}
	room, _ := c.Room(tb.code)
	if room.Status != domain.StatusQuestionResults {
		t.Fatalf("expected question_results, got %s", room.Status)
	}
}

func TestDeadlineFiringAfterLastAnswerIsIgnored(t *testing.T) {
	timeouts := newManualTimeouts()
	c := newTestCoordinator(app.Options{Timeouts: timeouts})
	tb := seat(t, c, 2)
	startCustom(t, c, tb)
	ctx := context.Background()

	conns := tb.everyone()
	for i, conn := range conns {
		if err := c.Answer(ctx, conn, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: i % 2, TimeRemaining: 10}); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	// the timer went off while the last answer held the room
	timeouts.fire(0)

	for i, conn := range conns {
		if n := conn.count(protocol.TypeQuestionResults); n != 1 {
			t.Fatalf("conn %d saw %d question_results", i, n)
		}
		if n := conn.count(protocol.TypeAnswerResult); n != 1 {
			t.Fatalf("conn %d was forced by the deadline: %d answer results", i, n)
		}
	}
	room, _ := c.Room(tb.code)
	if room.Status != domain.StatusQuestionResults {
		t.Fatalf("expected question_results, got %s", room.Status)
	}
}

func TestTimeoutForcesUnansweredPlayers(t *testing.T) {
	c := newTestCoordinator(app.Options{QuestionTimeout: 30 * time.Millisecond})
	tb := seat(t, c, 2)
	startCustom(t, c, tb)
	ctx := context.Background()

	_ = c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 30})
	_ = c.Answer(ctx, tb.guests[0], protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 1, TimeRemaining: 30})

	waitFor(t, tb.host, protocol.TypeQuestionResults, 1)
	time.Sleep(60 * time.Millisecond)

	slow := tb.guests[1]
	if slow.count(protocol.TypeAnswerResult) != 1 {
		t.Fatalf("slow player should get exactly one forced result")
	}
	forced := slow.last(t, protocol.TypeAnswerResult).Payload.(protocol.AnswerResultPayload)
	if forced.Correct || forced.Points != 0 || forced.CorrectIndex != 0 {
		t.Fatalf("unexpected forced result %+v", forced)
	}
	if tb.host.count(protocol.TypeQuestionResults) != 1 {
		t.Fatalf("expected exactly one question_results")
	}

	room, _ := c.Room(tb.code)
	p := room.Players[2]
	if !p.HasAnswered || p.LastAnswerCorrect == nil || *p.LastAnswerCorrect || p.LastAnswerTime == nil || *p.LastAnswerTime != 0 {
		t.Fatalf("slow player not marked as timed out: %+v", p)
	}

	// Walk to the end to inspect the ledger.
	_ = c.NextQuestion(ctx, tb.host, protocol.NextQuestion{RoomCode: tb.code})
	_ = c.NextQuestion(ctx, tb.host, protocol.NextQuestion{RoomCode: tb.code})
	over := tb.host.last(t, protocol.TypeGameOver).Payload.(protocol.GameOverPayload)
	slowHistory := over.AnswerHistories[2]
	first := slowHistory.Answers[0]
	if first.SelectedAnswer != domain.TimeoutAnswer || first.IsCorrect || first.Points != 0 || first.TimeRemaining != 0 {
		t.Fatalf("unexpected timeout record %+v", first)
	}
}

func TestSupersededTimeoutDoesNotTouchNextQuestion(t *testing.T) {
	timeouts := newManualTimeouts()
	c := newTestCoordinator(app.Options{Timeouts: timeouts})
	tb := seat(t, c, 1)
	startCustom(t, c, tb)
	ctx := context.Background()

	_ = c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 30})
	if err := c.NextQuestion(ctx, tb.host, protocol.NextQuestion{RoomCode: tb.code}); err != nil {
		t.Fatalf("next: %v", err)
	}
	if timeouts.armed() != 2 {
		t.Fatalf("expected two deadlines armed, got %d", timeouts.armed())
	}

	timeouts.fire(0)
	room, _ := c.Room(tb.code)
	if room.Status != domain.StatusPlaying || room.CurrentQuestionIndex != 1 || room.Players[1].HasAnswered {
		t.Fatalf("first deadline acted on question 2: %+v", room)
	}
	if tb.guests[0].count(protocol.TypeQuestionResults) != 0 {
		t.Fatalf("stale deadline produced results")
	}

	timeouts.fire(1)
	if tb.guests[0].count(protocol.TypeQuestionResults) != 1 {
		t.Fatalf("live deadline should close question 2")
	}
	timeouts.fire(1)
	if tb.guests[0].count(protocol.TypeQuestionResults) != 1 || tb.guests[0].count(protocol.TypeAnswerResult) != 1 {
		t.Fatalf("a deadline must only fire once")
	}
}

func TestDisconnectHostMigratesAndNewHostCanStart(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)

	c.Disconnect(tb.host)

	left := tb.guests[0].last(t, protocol.TypePlayerLeft).Payload.(protocol.RoomPayload)
	if len(left.Room.Players) != 1 || !left.Room.Players[0].IsHost {
		t.Fatalf("expected promoted host, got %+v", left.Room.Players)
	}
	if err := c.StartGame(context.Background(), tb.guests[0], protocol.StartGame{RoomCode: tb.code}); err != nil {
		t.Fatalf("new host start: %v", err)
	}
	if tb.guests[0].count(protocol.TypeQuestion) != 1 {
		t.Fatalf("expected question broadcast to new host")
	}
}

func TestLastPlayerLeavingDeletesRoom(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 0)
	startCustom(t, c, tb)

	c.Disconnect(tb.host)
	c.Disconnect(tb.host)

	_, err := c.JoinRoom(context.Background(), &recorder{}, protocol.JoinRoom{RoomCode: tb.code, PlayerName: "Late"})
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
	if c.RoomExists(tb.code) || c.Stats().Rooms != 0 {
		t.Fatalf("room should be gone")
	}
}

func TestDisconnectOfLastUnansweredPlayerClosesQuestion(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 2)
	startCustom(t, c, tb)
	ctx := context.Background()

	_ = c.Answer(ctx, tb.host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 12})
	_ = c.Answer(ctx, tb.guests[0], protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 3})
	if tb.host.count(protocol.TypeQuestionResults) != 0 {
		t.Fatalf("question closed too early")
	}

	c.Disconnect(tb.guests[1])
	if tb.host.count(protocol.TypePlayerLeft) != 1 || tb.host.count(protocol.TypeQuestionResults) != 1 {
		t.Fatalf("expected player_left then question_results")
	}
	lb := tb.host.last(t, protocol.TypeQuestionResults).Payload.(protocol.LeaderboardPayload).Leaderboard
	if len(lb) != 2 || lb[0].ID != tb.hostID || lb[0].Score != 460 || lb[1].Score != 190 {
		t.Fatalf("unexpected leaderboard %+v", lb)
	}
}

func TestRejoinFromBoundConnectionLeavesPreviousRoom(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	first := seat(t, c, 1)
	second := seat(t, c, 0)

	guest := first.guests[0]
	if _, err := c.JoinRoom(context.Background(), guest, protocol.JoinRoom{RoomCode: second.code, PlayerName: "Hopper"}); err != nil {
		t.Fatalf("join second room: %v", err)
	}
	room, _ := c.Room(first.code)
	if len(room.Players) != 1 {
		t.Fatalf("guest should have left the first room, players=%d", len(room.Players))
	}
	if first.host.count(protocol.TypePlayerLeft) != 1 {
		t.Fatalf("first room should be told the guest left")
	}
}

func TestFullGameScenario(t *testing.T) {
	c := newTestCoordinator(app.Options{})
	tb := seat(t, c, 1)
	host, guest := tb.host, tb.guests[0]
	ctx := context.Background()

	startCustom(t, c, tb)
	for _, conn := range tb.everyone() {
		q := conn.last(t, protocol.TypeQuestion).Payload.(protocol.QuestionPayload)
		if q.QuestionIndex != 0 || q.Question.ID != 101 || q.TotalQuestions != 2 {
			t.Fatalf("unexpected first question %+v", q)
		}
	}

	_ = c.Answer(ctx, host, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 0, TimeRemaining: 30})
	res := host.last(t, protocol.TypeAnswerResult).Payload.(protocol.AnswerResultPayload)
	if !res.Correct || res.Points != 1000 {
		t.Fatalf("expected 1000 points, got %+v", res)
	}
	_ = c.Answer(ctx, guest, protocol.Answer{RoomCode: tb.code, QuestionID: 101, AnswerIndex: 3, TimeRemaining: 25})

	lb := guest.last(t, protocol.TypeQuestionResults).Payload.(protocol.LeaderboardPayload).Leaderboard
	if lb[0].ID != tb.hostID {
		t.Fatalf("host should lead, got %+v", lb)
	}

	if err := c.NextQuestion(ctx, host, protocol.NextQuestion{RoomCode: tb.code}); err != nil {
		t.Fatalf("next: %v", err)
	}
	q := guest.last(t, protocol.TypeQuestion).Payload.(protocol.QuestionPayload)
	if q.QuestionIndex != 1 || q.Question.ID != 102 {
		t.Fatalf("unexpected second question %+v", q)
	}
	room, _ := c.Room(tb.code)
	if room.Players[0].HasAnswered || room.Players[0].LastAnswerCorrect != nil {
		t.Fatalf("round state not reset: %+v", room.Players[0])
	}

	_ = c.Answer(ctx, host, protocol.Answer{RoomCode: tb.code, QuestionID: 102, AnswerIndex: 0, TimeRemaining: 10})
	_ = c.Answer(ctx, guest, protocol.Answer{RoomCode: tb.code, QuestionID: 102, AnswerIndex: 2, TimeRemaining: 15})
	if err := c.NextQuestion(ctx, host, protocol.NextQuestion{RoomCode: tb.code}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	over := guest.last(t, protocol.TypeGameOver).Payload.(protocol.GameOverPayload)
	if len(over.Leaderboard) != 2 || len(over.AnswerHistories) != 2 || len(over.Questions) != 2 {
		t.Fatalf("unexpected game over %+v", over)
	}
	if over.Leaderboard[0].Score != 1000 || over.Leaderboard[1].Score != 550 {
		t.Fatalf("unexpected final scores %+v", over.Leaderboard)
	}
	for _, h := range over.AnswerHistories {
		if len(h.Answers) != 2 {
			t.Fatalf("expected 2 answers for %s, got %d", h.PlayerName, len(h.Answers))
		}
		sum := 0
		for _, a := range h.Answers {
			sum += a.Points
		}
		if sum != h.TotalScore {
			t.Fatalf("history points %d do not add up to score %d", sum, h.TotalScore)
		}
	}

	room, _ = c.Room(tb.code)
	if room.Status != domain.StatusFinished {
		t.Fatalf("expected finished, got %s", room.Status)
	}
	if err := c.NextQuestion(ctx, host, protocol.NextQuestion{RoomCode: tb.code}); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("next after game over should be ignored, got %v", err)
	}
	if host.count(protocol.TypeGameOver) != 1 {
		t.Fatalf("game over sent more than once")
	}
}

func TestLeaderboardKeepsJoinOrderOnTies(t *testing.T) {
	players := []domain.Player{
		{ID: "a", Score: 100},
		{ID: "b", Score: 300},
		{ID: "c", Score: 100},
		{ID: "d", Score: 300},
	}
	lb := app.Leaderboard(players)
	want := []string{"b", "d", "a", "c"}
	for i, id := range want {
		if lb[i].ID != id {
			t.Fatalf("position %d: want %s got %s", i, id, lb[i].ID)
		}
	}
	if players[0].ID != "a" {
		t.Fatalf("input slice was reordered")
	}
}
