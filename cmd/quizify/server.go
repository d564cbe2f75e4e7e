package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/Saurav-Ganguly/quizify"
)

const sessionCookieName = "quizify-session"

// Server wires the ingestion pipeline, the question bank, and the quiz
// session state machine behind a JSON API.
type Server struct {
	store         quizify.Store
	ingestor      *quizify.Ingestor
	bank          *quizify.Bank
	elaborator    quizify.Elaborator
	cookies       *sessions.CookieStore
	registry      *sessionRegistry
	quickQuizSize int
}

func newServer(cfg quizify.Config, store quizify.Store, ingestor *quizify.Ingestor, bank *quizify.Bank, elaborator quizify.Elaborator) *Server {
	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret = "quizify-dev-secret"
		log.Printf("Warning: server.session_secret not set, using insecure default")
	}
	return &Server{
		store:         store,
		ingestor:      ingestor,
		bank:          bank,
		elaborator:    elaborator,
		cookies:       sessions.NewCookieStore([]byte(secret)),
		registry:      newSessionRegistry(),
		quickQuizSize: cfg.QuickQuiz.Size,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/quizzes", s.handleIngest)
		r.Get("/quizzes", s.handleListQuizzes)
		r.Get("/quizzes/{id}", s.handleGetQuiz)
		r.Patch("/quizzes/{id}", s.handleRenameQuiz)
		r.Delete("/quizzes/{id}", s.handleDeleteQuiz)
		r.Get("/quizzes/{id}/pdf", s.handleQuizPDF)
		r.Get("/quizzes/{id}/attempts", s.handleListAttempts)
		r.Get("/quizzes/{id}/report", s.handleAttemptReport)
		r.Get("/subjects", s.handleListSubjects)
		r.Get("/progress", s.handleProgress)
		r.Post("/quick-quiz", s.handleQuickQuiz)

		r.Route("/session", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/", s.handleSessionView)
			r.Post("/select", s.handleSelect)
			r.Post("/submit", s.handleSubmit)
			r.Post("/next", s.handleNext)
			r.Post("/prev", s.handlePrev)
			r.Post("/finish", s.handleFinish)
			r.Post("/retake", s.handleRetake)
			r.Post("/elaborate", s.handleElaborate)
		})
	})

	return r
}

// handleIngest accepts a multipart PDF upload plus a subject and runs the
// full page-by-page pipeline before responding.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse upload")
		return
	}

	subject := strings.TrimSpace(r.FormValue("subject"))
	if subject == "" {
		writeError(w, http.StatusBadRequest, "subject is required")
		return
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "a pdf file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	result, err := s.ingestor.Ingest(r.Context(), data, subject, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, quizify.ErrExtraction):
			writeError(w, http.StatusUnprocessableEntity, "the document could not be read; please try a different PDF")
		case errors.Is(err, quizify.ErrNoContent):
			writeError(w, http.StatusUnprocessableEntity, "the document was readable but no page yielded quiz content")
		default:
			log.Printf("Ingestion failed: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.bank.Invalidate()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"quiz_id":        result.Quiz.ID,
		"subject":        result.Quiz.Subject,
		"question_count": len(result.Quiz.Mcqs),
		"total_pages":    result.TotalPages,
		"pages_skipped":  len(result.Skips),
		"pages_failed":   len(result.PageErrors),
		"page_errors":    result.PageErrors,
	})
}

func (s *Server) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.store.GetQuizzes(r.Context())
	if err != nil {
		log.Printf("Failed to get quizzes: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type quizSummary struct {
		ID            string `json:"id"`
		Subject       string `json:"subject"`
		PDFName       string `json:"pdf_name,omitempty"`
		QuestionCount int    `json:"question_count"`
		CreatedAt     string `json:"created_at"`
	}
	summaries := make([]quizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, quizSummary{
			ID:            quiz.ID,
			Subject:       quiz.Subject,
			PDFName:       quiz.PDFName,
			QuestionCount: len(quiz.Mcqs),
			CreatedAt:     quiz.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (s *Server) handleRenameQuiz(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Subject) == "" {
		writeError(w, http.StatusBadRequest, "a non-empty subject is required")
		return
	}

	err := s.store.RenameQuiz(r.Context(), chi.URLParam(r, "id"), strings.TrimSpace(body.Subject))
	if err != nil {
		if errors.Is(err, quizify.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.bank.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, quizify.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.bank.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuizPDF(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if len(quiz.PDFData) == 0 {
		writeError(w, http.StatusNotFound, "quiz has no stored document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if quiz.PDFName != "" {
		w.Header().Set("Content-Disposition", `inline; filename="`+quiz.PDFName+`"`)
	}
	w.Write(quiz.PDFData)
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.store.GetAttemptsForQuiz(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleAttemptReport(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	attempt, err := s.store.GetLatestAttemptForQuiz(r.Context(), quiz.ID)
	if err != nil {
		if errors.Is(err, quizify.ErrAttemptNotFound) {
			writeError(w, http.StatusNotFound, "no attempts for this quiz yet")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	report, err := quizify.AttemptReportPDF(quiz, attempt)
	if err != nil {
		log.Printf("Failed to render report: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="attempt-report.pdf"`)
	w.Write(report)
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := s.store.ListDistinctSubjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := quizify.ComputeProgress(r.Context(), s.store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleQuickQuiz assembles an ephemeral curated quiz and immediately starts
// a session over it.
func (s *Server) handleQuickQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := s.bank.QuickQuiz(r.Context(), s.quickQuizSize)
	if err != nil {
		if errors.Is(err, quizify.ErrEmptyPool) {
			writeError(w, http.StatusUnprocessableEntity, "no questions available yet; create a quiz first")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.registry.putQuickQuiz(quiz)

	if err := s.startSession(w, r, quiz); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		QuizID string `json:"quiz_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.QuizID == "" {
		writeError(w, http.StatusBadRequest, "quiz_id is required")
		return
	}

	var quiz *quizify.Quiz
	if quizify.IsQuickQuizID(body.QuizID) {
		q, ok := s.registry.getQuickQuiz(body.QuizID)
		if !ok {
			writeError(w, http.StatusNotFound, "quick quiz expired")
			return
		}
		quiz = q
	} else {
		q, err := s.store.GetQuizByID(r.Context(), body.QuizID)
		if err != nil {
			if errors.Is(err, quizify.ErrQuizNotFound) {
				writeError(w, http.StatusNotFound, "quiz not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		quiz = q
	}

	if err := s.startSession(w, r, quiz); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, quiz *quizify.Quiz) error {
	session, err := quizify.NewSession(quiz, s.store, s.elaborator)
	if err != nil {
		return err
	}

	sid := uuid.New().String()
	cookie, _ := s.cookies.Get(r, sessionCookieName)
	if prev, ok := cookie.Values["sid"].(string); ok {
		s.registry.removeSession(prev)
	}
	cookie.Values["sid"] = sid
	if err := cookie.Save(r, w); err != nil {
		return err
	}
	s.registry.putSession(sid, session)

	writeJSON(w, http.StatusCreated, sessionView(session))
	return nil
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (*quizify.Session, bool) {
	cookie, _ := s.cookies.Get(r, sessionCookieName)
	sid, ok := cookie.Values["sid"].(string)
	if !ok {
		writeError(w, http.StatusNotFound, "no active quiz session")
		return nil, false
	}
	session, ok := s.registry.getSession(sid)
	if !ok {
		writeError(w, http.StatusNotFound, "no active quiz session")
		return nil, false
	}
	return session, true
}

func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	var body struct {
		Option int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "option is required")
		return
	}
	if err := session.Select(body.Option); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := session.Submit(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := session.Next(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := session.Prev(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := session.Finish(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleRetake(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := session.Retake(); err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleElaborate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	elaborated, err := session.Elaborate(r.Context())
	if err != nil {
		// Non-fatal: the previously displayed explanation stays intact.
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"elaborated_explanation": elaborated})
}

func (s *Server) loadQuiz(w http.ResponseWriter, r *http.Request) (*quizify.Quiz, bool) {
	quiz, err := s.store.GetQuizByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, quizify.ErrQuizNotFound) {
			writeError(w, http.StatusNotFound, "quiz not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return quiz, true
}

// sessionView renders the state machine for the client. The correct answer
// and explanation are revealed only once a slot is submitted.
func sessionView(session *quizify.Session) map[string]interface{} {
	quiz := session.Quiz()
	slots := session.Slots()
	current := session.Current()
	mcq := quiz.Mcqs[current]
	slot := slots[current]

	view := map[string]interface{}{
		"quiz_id":  quiz.ID,
		"subject":  quiz.Subject,
		"current":  current,
		"total":    len(quiz.Mcqs),
		"finished": session.Finished(),
		"question": map[string]interface{}{
			"question": mcq.Question,
			"options":  mcq.Options,
		},
		"slot": map[string]interface{}{
			"state":    slotStateName(slot.State),
			"selected": slot.Selected,
		},
	}

	if slot.State == quizify.SlotSubmitted {
		explanation := mcq.Explanation
		if slot.DisplayedExplanation != "" {
			explanation = slot.DisplayedExplanation
		}
		view["result"] = map[string]interface{}{
			"correct":        slot.Correct,
			"correct_answer": mcq.CorrectAnswer,
			"explanation":    explanation,
		}
	}

	if session.Finished() {
		view["score"] = session.Score()
	}
	return view
}

func slotStateName(state quizify.SlotState) string {
	switch state {
	case quizify.SlotSelected:
		return "selected"
	case quizify.SlotSubmitted:
		return "submitted"
	default:
		return "unanswered"
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizify.ErrNoSelection),
		errors.Is(err, quizify.ErrAlreadySubmitted),
		errors.Is(err, quizify.ErrNotSubmitted),
		errors.Is(err, quizify.ErrSessionFinished):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, quizify.ErrSessionBusy):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
