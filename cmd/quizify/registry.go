package main

import (
	"sync"

	"github.com/Saurav-Ganguly/quizify"
)

// sessionRegistry keeps live quiz sessions and the ephemeral quick quizzes
// they may run over. Quick quizzes are never persisted; they live here until
// the session that owns them is replaced.
type sessionRegistry struct {
	mu           sync.RWMutex
	sessions     map[string]*quizify.Session
	quickQuizzes map[string]*quizify.Quiz
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		sessions:     make(map[string]*quizify.Session),
		quickQuizzes: make(map[string]*quizify.Quiz),
	}
}

func (r *sessionRegistry) putSession(id string, session *quizify.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = session
}

func (r *sessionRegistry) getSession(id string) (*quizify.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *sessionRegistry) removeSession(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[id]; ok {
		// Drop the ephemeral quiz together with the session that used it.
		if quiz := session.Quiz(); quizify.IsQuickQuizID(quiz.ID) {
			delete(r.quickQuizzes, quiz.ID)
		}
		delete(r.sessions, id)
	}
}

func (r *sessionRegistry) putQuickQuiz(quiz *quizify.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quickQuizzes[quiz.ID] = quiz
}

func (r *sessionRegistry) getQuickQuiz(id string) (*quizify.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quickQuizzes[id]
	return quiz, ok
}
