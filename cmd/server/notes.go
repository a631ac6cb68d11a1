package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"text/template"

	"github.com/rcbilson/newsnotes/llm"
	"github.com/rcbilson/newsnotes/quiz"
)

const quizQuestions = 5

// articleRef identifies a news article as the client knows it from search.
type articleRef struct {
	Url         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

type noteMaker struct {
	generate generateFunc
	prompts  *Prompts
}

func (nm noteMaker) ask(ctx context.Context, t *template.Template, data promptData, stats *llm.Usage) (string, error) {
	prompt, err := render(t, data)
	if err != nil {
		return "", err
	}
	return nm.generate(ctx, prompt, stats)
}

// quickNotes writes notes from the headline and description alone.
func (nm noteMaker) quickNotes(ctx context.Context, ref articleRef, stats *llm.Usage) (string, error) {
	return nm.ask(ctx, nm.prompts.notes, promptData{articleRef: ref}, stats)
}

// detailedNotes works from the article text in three passes: analysis,
// background context, then compiled notes.
func (nm noteMaker) detailedNotes(ctx context.Context, ref articleRef, content string, stats *llm.Usage) (string, error) {
	data := promptData{articleRef: ref, Content: content}
	data.India = nm.indiaRelated(ctx, data, stats)

	var err error
	data.Analysis, err = nm.ask(ctx, nm.prompts.analysis, data, stats)
	if err != nil {
		return "", fmt.Errorf("analysis: %w", err)
	}
	data.Context, err = nm.ask(ctx, nm.prompts.context, data, stats)
	if err != nil {
		return "", fmt.Errorf("context: %w", err)
	}
	notes, err := nm.ask(ctx, nm.prompts.compile, data, stats)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}
	return notes, nil
}

// indiaRelated asks the model to classify the article. Any failure counts as
// foreign news.
func (nm noteMaker) indiaRelated(ctx context.Context, data promptData, stats *llm.Usage) bool {
	answer, err := nm.ask(ctx, nm.prompts.classify, data, stats)
	if err != nil {
		log.Printf("classifying %s: %v", data.Url, err)
		return false
	}
	return strings.ToUpper(strings.TrimSpace(answer)) == "INDIA"
}

// makeQuiz generates a quiz and parses it. The raw model text is returned too
// so a failed parse can be logged.
func (nm noteMaker) makeQuiz(ctx context.Context, ref articleRef, content string, stats *llm.Usage) ([]quiz.Question, string, error) {
	data := promptData{articleRef: ref, Content: content, Questions: quizQuestions}
	text, err := nm.ask(ctx, nm.prompts.quiz, data, stats)
	if err != nil {
		return nil, "", err
	}
	return quiz.Parse(text), text, nil
}
