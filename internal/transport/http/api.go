package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Atharva587/MultiplayerQuizNew/internal/app"
	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
	"github.com/Atharva587/MultiplayerQuizNew/internal/parser"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

const (
	maxBodyBytes  = 1 << 20
	minSourceText = 20
	qrSize        = 320
)

const noQuestionsFoundMessage = "No valid questions found. Please format questions like:\n" +
	"Q: Question text?\nA) Option 1\nB) Option 2*\nC) Option 3\nD) Option 4\n(* marks correct answer)"

// API serves the REST side of the quiz: the saved question library, the text parser
// and read-only room lookups.
type API struct {
	coordinator *app.Coordinator
	library     app.QuestionLibrary
	log         logrus.FieldLogger
	joinURL     string
	onChange    func(context.Context)
}

type messageResponse struct {
	Message string `json:"message"`
}

type saveQuestionsRequest struct {
	Questions []domain.Question `json:"questions"`
	FolderID  *int64            `json:"folderId"`
}

type saveQuestionsResponse struct {
	Saved     int                    `json:"saved"`
	Questions []domain.SavedQuestion `json:"questions"`
}

type listQuestionsResponse struct {
	Questions []domain.Question `json:"questions"`
	Total     int               `json:"total"`
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Questions   []domain.Question `json:"questions"`
	ParsedCount int               `json:"parsedCount"`
}

func (a *API) register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/saved-questions", a.handleSaveQuestions).Methods(http.MethodPost)
	api.HandleFunc("/saved-questions", a.handleListQuestions).Methods(http.MethodGet)
	api.HandleFunc("/saved-questions/{id:[0-9]+}", a.handleDeleteQuestion).Methods(http.MethodDelete)
	api.HandleFunc("/parse-questions", a.handleParseQuestions).Methods(http.MethodPost)
	api.HandleFunc("/validate-question", a.handleValidateQuestion).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/exists", a.handleRoomExists).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/qr.png", a.handleRoomQR).Methods(http.MethodGet)
	api.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)
}

// handleSaveQuestions handles POST /api/saved-questions
func (a *API) handleSaveQuestions(w http.ResponseWriter, r *http.Request) {
	var req saveQuestionsRequest
	if err := decodeBody(w, r, &req); err != nil || len(req.Questions) == 0 {
		writeMessage(w, http.StatusBadRequest, "Please provide questions to save")
		return
	}
	for i, q := range req.Questions {
		if err := domain.ValidateQuestion(q); err != nil {
			writeMessage(w, http.StatusBadRequest, "Question "+strconv.Itoa(i+1)+" is invalid: "+err.Error())
			return
		}
	}

	saved, err := a.library.Save(r.Context(), req.Questions, req.FolderID)
	if err != nil {
		a.log.WithError(err).Error("save questions")
		writeMessage(w, http.StatusInternalServerError, "Failed to save questions: "+err.Error())
		return
	}
	a.changed(r.Context())
	writeJSON(w, http.StatusOK, saveQuestionsResponse{Saved: len(saved), Questions: saved})
}

// handleListQuestions handles GET /api/saved-questions
func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	saved, err := a.library.List(r.Context())
	if err != nil {
		a.log.WithError(err).Error("list saved questions")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch questions: "+err.Error())
		return
	}
	questions := make([]domain.Question, 0, len(saved))
	for _, s := range saved {
		questions = append(questions, s.AsQuestion())
	}
	writeJSON(w, http.StatusOK, listQuestionsResponse{Questions: questions, Total: len(questions)})
}

// handleDeleteQuestion handles DELETE /api/saved-questions/{id}
func (a *API) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid question id")
		return
	}
	err = a.library.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrSavedQuestionNotFound):
		writeMessage(w, http.StatusNotFound, "Question not found")
		return
	case err != nil:
		a.log.WithError(err).WithField("id", id).Error("delete saved question")
		writeMessage(w, http.StatusInternalServerError, "Failed to delete question: "+err.Error())
		return
	}
	a.changed(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleParseQuestions handles POST /api/parse-questions
func (a *API) handleParseQuestions(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeBody(w, r, &req); err != nil || req.Text == "" {
		writeMessage(w, http.StatusBadRequest, "Please provide text content")
		return
	}
	if len(req.Text) < minSourceText {
		writeMessage(w, http.StatusBadRequest, "Source content is too short.")
		return
	}

	questions := parser.Parse(req.Text)
	if len(questions) == 0 {
		writeMessage(w, http.StatusBadRequest, noQuestionsFoundMessage)
		return
	}
	writeJSON(w, http.StatusOK, parseResponse{Questions: questions, ParsedCount: len(questions)})
}

// handleValidateQuestion handles POST /api/validate-question. A question is valid when it
// carries an id and a category and passes the playable-question rules.
func (a *API) handleValidateQuestion(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(w, r, &raw); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	var presence struct {
		ID       *int    `json:"id"`
		Category *string `json:"category"`
	}
	var q domain.Question
	valid := json.Unmarshal(raw, &presence) == nil &&
		json.Unmarshal(raw, &q) == nil &&
		presence.ID != nil && presence.Category != nil &&
		domain.ValidateQuestion(q) == nil
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// handleRoomExists handles GET /api/rooms/{code}/exists
func (a *API) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"exists": a.coordinator.RoomExists(mux.Vars(r)["code"])})
}

// handleRoomQR handles GET /api/rooms/{code}/qr.png
func (a *API) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if !a.coordinator.RoomExists(code) {
		writeMessage(w, http.StatusNotFound, domain.ErrRoomNotFound.Error())
		return
	}

	png, err := qrcode.Encode(a.joinLink(r, code), qrcode.Medium, qrSize)
	if err != nil {
		a.log.WithError(err).WithField("room", code).Error("qr generation failed")
		writeMessage(w, http.StatusInternalServerError, "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// handleStats handles GET /api/stats
func (a *API) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.coordinator.Stats())
}

// joinLink builds <base>?room=<code>; base is the configured public URL or the request origin.
func (a *API) joinLink(r *http.Request, code string) string {
	base := a.joinURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host + "/"
	}
	return base + "?room=" + url.QueryEscape(code)
}

func (a *API) changed(ctx context.Context) {
	if a.onChange != nil {
		a.onChange(ctx)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
