package quizify

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists quizzes and attempts in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			pdf_name TEXT,
			notes TEXT,
			pdf_data BLOB,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS mcqs (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer INTEGER NOT NULL,
			explanation TEXT,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			answers TEXT NOT NULL,
			score INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			completed_at DATETIME NOT NULL,
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateQuiz inserts the quiz and all of its questions in one transaction.
func (s *SQLiteStore) CreateQuiz(ctx context.Context, quiz *Quiz) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO quizzes (id, subject, pdf_name, notes, pdf_data, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		quiz.ID, quiz.Subject, quiz.PDFName, quiz.Notes, quiz.PDFData, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	for i, mcq := range quiz.Mcqs {
		optionsJSON, err := optionsToJSON(mcq.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO mcqs (id, quiz_id, position, question, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?, ?)",
			mcq.ID, quiz.ID, i, mcq.Question, optionsJSON, mcq.CorrectAnswer, mcq.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quiz: %w", err)
	}
	return nil
}

// GetQuizzes returns all quizzes with their questions, newest first.
func (s *SQLiteStore) GetQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subject, pdf_name, notes, pdf_data, created_at FROM quizzes ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []Quiz
	for rows.Next() {
		var quiz Quiz
		var pdfName, notes sql.NullString
		if err := rows.Scan(&quiz.ID, &quiz.Subject, &pdfName, &notes, &quiz.PDFData, &quiz.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quiz.PDFName = pdfName.String
		quiz.Notes = notes.String
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	for i := range quizzes {
		mcqs, err := s.getMcqs(ctx, quizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quizzes[i].Mcqs = mcqs
	}
	return quizzes, nil
}

// GetQuizByID returns one quiz with its questions or ErrQuizNotFound.
func (s *SQLiteStore) GetQuizByID(ctx context.Context, id string) (*Quiz, error) {
	var quiz Quiz
	var pdfName, notes sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, subject, pdf_name, notes, pdf_data, created_at FROM quizzes WHERE id = ?", id,
	).Scan(&quiz.ID, &quiz.Subject, &pdfName, &notes, &quiz.PDFData, &quiz.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	quiz.PDFName = pdfName.String
	quiz.Notes = notes.String

	mcqs, err := s.getMcqs(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.Mcqs = mcqs
	return &quiz, nil
}

func (s *SQLiteStore) getMcqs(ctx context.Context, quizID string) ([]Mcq, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, question, options, correct_answer, explanation FROM mcqs WHERE quiz_id = ? ORDER BY position", quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var mcqs []Mcq
	for rows.Next() {
		var mcq Mcq
		var optionsJSON string
		var explanation sql.NullString
		if err := rows.Scan(&mcq.ID, &mcq.Question, &optionsJSON, &mcq.CorrectAnswer, &explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		mcq.Explanation = explanation.String
		mcq.Options, err = jsonToOptions(optionsJSON)
		if err != nil {
			return nil, err
		}
		mcqs = append(mcqs, mcq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}
	return mcqs, nil
}

// RenameQuiz updates a quiz's display name.
func (s *SQLiteStore) RenameQuiz(ctx context.Context, id, subject string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE quizzes SET subject = ? WHERE id = ?", subject, id)
	if err != nil {
		return fmt.Errorf("failed to rename quiz: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to rename quiz: %w", err)
	}
	if affected == 0 {
		return ErrQuizNotFound
	}
	return nil
}

// DeleteQuiz removes the quiz, its questions, and its attempts in one transaction.
func (s *SQLiteStore) DeleteQuiz(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attempts WHERE quiz_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete attempts: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM mcqs WHERE quiz_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM quizzes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	if affected == 0 {
		return ErrQuizNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// CreateAttempt inserts one finished attempt.
func (s *SQLiteStore) CreateAttempt(ctx context.Context, attempt *QuizAttempt) error {
	answersJSON, err := json.Marshal(attempt.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO attempts (id, quiz_id, answers, score, total_questions, completed_at) VALUES (?, ?, ?, ?, ?, ?)",
		attempt.ID, attempt.QuizID, string(answersJSON), attempt.Score, attempt.TotalQuestions, attempt.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttemptsForQuiz returns all attempts for a quiz, oldest first.
func (s *SQLiteStore) GetAttemptsForQuiz(ctx context.Context, quizID string) ([]QuizAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, quiz_id, answers, score, total_questions, completed_at FROM attempts WHERE quiz_id = ? ORDER BY completed_at, id", quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts: %w", err)
	}
	defer rows.Close()

	var attempts []QuizAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows.Scan)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}

// GetLatestAttemptForQuiz returns the most recent attempt or ErrAttemptNotFound.
func (s *SQLiteStore) GetLatestAttemptForQuiz(ctx context.Context, quizID string) (*QuizAttempt, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, quiz_id, answers, score, total_questions, completed_at FROM attempts WHERE quiz_id = ? ORDER BY completed_at DESC, id DESC LIMIT 1", quizID)
	attempt, err := scanAttempt(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// ListDistinctSubjects returns the sorted set of subjects across all quizzes.
func (s *SQLiteStore) ListDistinctSubjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT subject FROM quizzes ORDER BY subject")
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []string
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}
	return subjects, nil
}

func scanAttempt(scan func(dest ...interface{}) error) (*QuizAttempt, error) {
	var attempt QuizAttempt
	var answersJSON string
	if err := scan(&attempt.ID, &attempt.QuizID, &answersJSON, &attempt.Score, &attempt.TotalQuestions, &attempt.CompletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &attempt.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	return &attempt, nil
}

func optionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

func jsonToOptions(optionsJSON string) ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}
