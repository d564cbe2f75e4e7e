package quizify

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// AttemptReportPDF renders a finished attempt as a printable PDF: score
// summary plus a per-question correctness table.
func AttemptReportPDF(quiz *Quiz, attempt *QuizAttempt) ([]byte, error) {
	if len(attempt.Answers) != len(quiz.Mcqs) {
		return nil, fmt.Errorf("attempt has %d answers for %d questions", len(attempt.Answers), len(quiz.Mcqs))
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 14, "Quiz Attempt Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 9, quiz.Subject, "", 1, "C", false, 0, "")

	pct := 0.0
	if attempt.TotalQuestions > 0 {
		pct = float64(attempt.Score) * 100 / float64(attempt.TotalQuestions)
	}
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("Score: %d/%d (%.0f%%) | Completed: %s",
			attempt.Score, attempt.TotalQuestions, pct, attempt.CompletedAt.Format("2006-01-02 15:04")),
		"", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(108, 7, "Question", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Your Answer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 7, "Result", "1", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, mcq := range quiz.Mcqs {
		answer := attempt.Answers[i]

		answered := "-"
		result := "Unanswered"
		if answer != Unanswered && answer >= 0 && answer < len(mcq.Options) {
			answered = fmt.Sprintf("%d", answer+1)
			if answer == mcq.CorrectAnswer {
				result = "Correct"
			} else {
				result = fmt.Sprintf("Wrong (correct: %d)", mcq.CorrectAnswer+1)
			}
		}

		question := mcq.Question
		if len(question) > 90 {
			question = question[:87] + "..."
		}

		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(108, 7, question, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, answered, "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, result, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, "Attempt ID: "+attempt.ID, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
