package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rcbilson/newsnotes/llm"
	"gotest.tools/assert"
)

func scriptedNotes(t *testing.T, answer func(prompt string) (string, error)) (noteMaker, *[]string) {
	p, err := loadPrompts("")
	assert.NilError(t, err)
	var seen []string
	gen := func(_ context.Context, prompt string, stats *llm.Usage) (string, error) {
		seen = append(seen, prompt)
		return answer(prompt)
	}
	return noteMaker{generate: gen, prompts: p}, &seen
}

func TestIndiaRelated(t *testing.T) {
	for _, tc := range []struct {
		reply string
		err   error
		india bool
	}{
		{"INDIA", nil, true},
		{"  india\n", nil, true},
		{"FOREIGN", nil, false},
		{"India, mostly", nil, false},
		{"", errors.New("throttled"), false},
	} {
		nm, _ := scriptedNotes(t, func(string) (string, error) { return tc.reply, tc.err })
		got := nm.indiaRelated(context.Background(), promptData{articleRef: testRef, Content: "text"}, nil)
		assert.Equal(t, tc.india, got, tc.reply)
	}
}

func TestDetailedNotesForeign(t *testing.T) {
	nm, seen := scriptedNotes(t, func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Respond with exactly one word"):
			return "", errors.New("model unavailable")
		case strings.Contains(prompt, "Give brief context"):
			return "background", nil
		default:
			return "analysis text", nil
		}
	})

	notes, err := nm.detailedNotes(context.Background(), testRef, "article body", nil)
	assert.NilError(t, err)
	assert.Equal(t, "analysis text", notes)

	prompts := *seen
	assert.Equal(t, 4, len(prompts))
	assert.Assert(t, strings.Contains(prompts[1], "international"))
	assert.Assert(t, strings.Contains(prompts[1], "Implications for India"))
	assert.Assert(t, strings.Contains(prompts[2], "analysis text"))
	assert.Assert(t, strings.Contains(prompts[3], "Context: background"))
}

func TestDetailedNotesError(t *testing.T) {
	nm, _ := scriptedNotes(t, func(prompt string) (string, error) {
		if strings.Contains(prompt, "Give brief context") {
			return "", llm.ErrNoOutput
		}
		return "FOREIGN", nil
	})

	_, err := nm.detailedNotes(context.Background(), testRef, "article body", nil)
	assert.ErrorContains(t, err, "context:")
	assert.Assert(t, errors.Is(err, llm.ErrNoOutput))
}

func TestMakeQuiz(t *testing.T) {
	nm, seen := scriptedNotes(t, func(string) (string, error) { return quizText, nil })

	questions, raw, err := nm.makeQuiz(context.Background(), testRef, "", nil)
	assert.NilError(t, err)
	assert.Equal(t, quizText, raw)
	assert.Equal(t, 2, len(questions))
	assert.Equal(t, "A", questions[1].Answer)
	assert.Assert(t, strings.Contains((*seen)[0], "quiz with 5 UPSC"))
}
