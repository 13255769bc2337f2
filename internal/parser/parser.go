// Package parser turns loosely formatted plain text into quiz questions.
//
// The accepted layout is the one people and chat assistants tend to produce:
//
//	Q1. Which bone protects the brain?
//	A) Femur
//	B) Skull*
//	C) Rib
//	D) Tibia
//	Category: Bones
//
// A question starts at "Q:", "Q1.", "Question 2:", "1.", "1)" or any line ending
// in "?". Options are lettered A-D in any of "A)", "a.", "(B)", "[C]" or "D:".
// The correct option carries "*", "(Correct)" or "[Correct]".
package parser

import (
	"regexp"
	"strings"

	"github.com/Atharva587/MultiplayerQuizNew/internal/domain"
)

var (
	leadingMarkdown = regexp.MustCompile(`^[#*]+\s*`)
	questionLine    = regexp.MustCompile(`(?i)^(?:Q\d*[:.]?|Question\s*\d*[:.]?|\d+[.)])\s+(.+)|(.+\?)$`)
	optionLine      = regexp.MustCompile(`(?i)^[(\[]?([A-D])[.)\]:]\s+(.+)`)
	categoryLine    = regexp.MustCompile(`(?i)^Category[:.]?\s*`)
	correctMarker   = regexp.MustCompile(`(?i)\(Correct\)|\[Correct\]`)
	trailingBold    = regexp.MustCompile(`\*\*$`)
)

const optionCount = 4

type draft struct {
	question string
	category string
	options  [optionCount]string
	correct  int
}

func newDraft(text string) *draft {
	return &draft{
		question: trailingBold.ReplaceAllString(strings.TrimSpace(text), ""),
		category: domain.DefaultCategory,
		correct:  -1,
	}
}

func (d *draft) hasOptions() bool {
	for _, o := range d.options {
		if o != "" {
			return true
		}
	}
	return false
}

func (d *draft) complete() bool {
	if d.question == "" || d.correct < 0 {
		return false
	}
	for _, o := range d.options {
		if o == "" {
			return false
		}
	}
	return true
}

// Parse extracts every complete question from text. Questions missing an option
// or a correct marker are dropped. IDs are assigned 1..n in document order.
func Parse(text string) []domain.Question {
	questions := []domain.Question{}
	var cur *draft

	flush := func() {
		if cur == nil || !cur.complete() {
			return
		}
		if cur.category == "" {
			cur.category = domain.DefaultCategory
		}
		questions = append(questions, domain.Question{
			ID:           len(questions) + 1,
			Question:     cur.question,
			Options:      append([]string(nil), cur.options[:]...),
			CorrectIndex: cur.correct,
			Category:     cur.category,
		})
	}

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if m := questionLine.FindStringSubmatch(line); m != nil {
			flush()
			text := m[1]
			if text == "" {
				text = m[2]
			}
			cur = newDraft(text)
			continue
		}
		if m := optionLine.FindStringSubmatch(line); m != nil {
			if cur == nil {
				continue
			}
			idx := int(strings.ToUpper(m[1])[0] - 'A')
			option, marked := stripCorrectMarkers(m[2])
			if marked {
				cur.correct = idx
			}
			cur.options[idx] = option
			continue
		}
		if categoryLine.MatchString(line) {
			if cur != nil {
				cur.category = strings.TrimSpace(categoryLine.ReplaceAllString(line, ""))
			}
			continue
		}
		if cur != nil && !cur.hasOptions() {
			cur.question += " " + line
		}
	}
	flush()
	return questions
}

func cleanLine(raw string) string {
	line := strings.TrimSpace(raw)
	line = leadingMarkdown.ReplaceAllString(line, "")
	return strings.TrimPrefix(line, "**")
}

func stripCorrectMarkers(option string) (string, bool) {
	option = strings.TrimSpace(option)
	marked := strings.Contains(option, "*") || correctMarker.MatchString(option)
	option = strings.ReplaceAll(option, "*", "")
	option = correctMarker.ReplaceAllString(option, "")
	return strings.TrimSpace(option), marked
}
