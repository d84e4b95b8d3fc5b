// Package prompt builds the instructions sent to the model for study
// material, tests and grading. Every builder is a pure function of its inputs.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/eduai/internal/quiz"
)

// NoDocuments replaces the document block when no excerpts were supplied.
const NoDocuments = "No user documents provided."

// sectionSuffixes narrow the study prompt to one section per call.
var sectionSuffixes = map[quiz.Section]string{
	quiz.SectionContent:   "Now provide the STUDY CONTENT & KEY POINTS section only.",
	quiz.SectionMCQ:       "Now provide the MCQs section only, respecting the requested counts.",
	quiz.SectionTrueFalse: "Now provide the True/False section only, respecting the requested counts.",
	quiz.SectionFillBlank: "Now provide the Fill-in-the-Blanks section only, respecting the requested counts.",
	quiz.SectionShortQA:   "Now provide the Short Q&A section only, respecting the requested counts and length.",
	quiz.SectionMediumQA:  "Now provide the Medium Q&A section only, respecting the requested counts and length.",
	quiz.SectionLongQA:    "Now provide the Long Q&A section only, respecting the requested counts and length.",
}

// StudyPrompt builds the full study-material prompt for a topic.
func StudyPrompt(req quiz.StudyRequest, docs quiz.DocumentContext) string {
	board := req.BoardOrDefault()
	counts, _ := json.Marshal(req.Counts)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s teacher for %s %s. Create comprehensive study material based on the following:\n\n", board, req.ClassName, req.Subject)
	writeTopic(&b, board, req.Theme, req.ClassName, req.Subject)

	b.WriteString("\nUser provided documents (if any):\n")
	b.WriteString(documentBlock(docs))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Generation parameters (counts): %s\n\n", counts)
	fmt.Fprintf(&b, "Create ONLY content for %s %s %s. Use the user documents to inform and enrich examples and questions where relevant.\n\n", board, req.ClassName, req.Subject)

	b.WriteString(`Produce the following sections. Respect the requested number of items for each question type (counts) and organize by difficulty levels (EASY, MEDIUM, HARD, HARDEST) where applicable.

1. STUDY CONTENT & KEY POINTS: overview, 5-7 key learning points with explanations, important definitions, practical applications.
2. MCQs: generate the specified total number of MCQs and split them across difficulty levels roughly evenly.
3. TRUE OR FALSE: generate the specified total number and split across difficulties.
4. FILL IN THE BLANKS: generate the specified total number and split across difficulties.
5. SHORT Q&A (3-4 lines): generate the specified total number split by difficulties.
6. MEDIUM Q&A (6-7 lines): generate the specified total number split by difficulties.
7. LONG Q&A (10-20 lines): generate the specified total number split by difficulties.

Format the output clearly with headings for each section and difficulty, and include answers for all questions.`)

	return b.String()
}

// StudySectionPrompt is StudyPrompt narrowed to a single section.
func StudySectionPrompt(req quiz.StudyRequest, docs quiz.DocumentContext, section quiz.Section) string {
	return StudyPrompt(req, docs) + "\n\n" + sectionSuffixes[section]
}

// TestPrompt builds the single prompt that asks for a whole question bank as JSON.
func TestPrompt(req quiz.TestRequest) string {
	board := req.BoardOrDefault()

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s %s %s teacher. Create a comprehensive test for the following topic:\n\n", board, req.ClassName, req.Subject)
	writeTopic(&b, board, req.Theme, req.ClassName, req.Subject)

	b.WriteString("\nGenerate EXACTLY the following number of questions for each section, with questions organized by difficulty levels (EASY, MEDIUM, HARD, HARDEST). Distribute questions roughly evenly across difficulty levels for each section. A section with 0 questions must be returned with empty lists.\n\n")

	b.WriteString("REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. MCQs: Generate %d multiple choice questions (4 options each, clearly mark correct answer)\n", req.NumMCQ)
	fmt.Fprintf(&b, "2. TRUE OR FALSE: Generate %d true/false statements\n", req.NumTrueFalse)
	fmt.Fprintf(&b, "3. FILL IN THE BLANKS: Generate %d fill-in-the-blank questions\n", req.NumFillBlanks)
	fmt.Fprintf(&b, "4. SHORT Q&A (3-4 lines): Generate %d short question & answer pairs\n", req.NumShortQA)
	fmt.Fprintf(&b, "5. MEDIUM Q&A (6-7 lines): Generate %d medium question & answer pairs\n", req.NumMediumQA)
	fmt.Fprintf(&b, "6. LONG Q&A (10-20 lines): Generate %d long question & answer pairs\n", req.NumLongQA)

	b.WriteString(`
Return the output as a valid JSON with this structure:
{
    "mcqs": {
        "EASY": [
            {"question": "...", "options": ["A", "B", "C", "D"], "answer": "A", "explanation": "..."}
        ],
        "MEDIUM": [...],
        "HARD": [...],
        "HARDEST": [...]
    },
    "true_false": {
        "EASY": [
            {"statement": "...", "answer": true/false, "explanation": "..."}
        ],
        ...
    },
    "fill_blanks": {
        "EASY": [
            {"question": "... _____ ...", "answer": "word", "explanation": "..."}
        ],
        ...
    },
    "short_qa": {
        "EASY": [
            {"question": "...", "answer": "...", "points": 1}
        ],
        ...
    },
    "medium_qa": {
        "EASY": [
            {"question": "...", "answer": "...", "points": 3}
        ],
        ...
    },
    "long_qa": {
        "EASY": [
            {"question": "...", "answer": "...", "points": 5}
        ],
        ...
    }
}

`)
	fmt.Fprintf(&b, "Ensure all content is appropriate for the %s %s %s syllabus. Make questions comprehensive and test understanding.", board, req.ClassName, req.Subject)

	return b.String()
}

// GradingPrompt embeds the question bank and the learner's answers and asks
// for a per-question verdict keyed by answer key.
func GradingPrompt(bank *quiz.QuestionBank, answers quiz.AnswerMap) (string, error) {
	if answers == nil {
		answers = quiz.AnswerMap{}
	}
	questions, err := json.MarshalIndent(bank, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode questions: %w", err)
	}
	submitted, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are an experienced teacher evaluating student answers.\n\n")
	b.WriteString("QUESTIONS AND CORRECT ANSWERS:\n")
	b.Write(questions)
	b.WriteString("\n\nSTUDENT ANSWERS:\n")
	b.Write(submitted)
	b.WriteString(`

Student answers are keyed as <type>_<DIFFICULTY>_<index>, where type is one of mcq, tf, fill, short, medium, long and index counts from 0 within that difficulty list.

Evaluate each answer and provide:
1. Whether it's correct or incorrect
2. Score for this answer (0 for completely wrong, partial for partially correct, full for correct)
3. Detailed explanation of the correct answer
4. What the student missed or did incorrectly

Return as JSON with structure:
{
    "question_id": {
        "is_correct": true/false,
        "score": 0/partial/full,
        "feedback": "...",
        "correct_answer": "..."
    }
}`)
	return b.String(), nil
}

func writeTopic(b *strings.Builder, board, theme, className, subject string) {
	fmt.Fprintf(b, "Theme: %s\n", theme)
	fmt.Fprintf(b, "Class: %s\n", className)
	fmt.Fprintf(b, "Subject: %s\n", subject)
	fmt.Fprintf(b, "Board: %s\n", board)
}

func documentBlock(docs quiz.DocumentContext) string {
	if len(docs) == 0 {
		return NoDocuments
	}
	parts := make([]string, len(docs))
	for i, d := range docs {
		text := d.Text
		if text == "" {
			text = "(no extract)"
		}
		parts[i] = fmt.Sprintf("File: %s\n%s", d.Name, text)
	}
	return strings.Join(parts, "\n")
}
