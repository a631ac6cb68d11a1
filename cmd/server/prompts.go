package main

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// promptText holds the raw prompt templates. A YAML file with the same keys
// can override any of them.
type promptText struct {
	System   string `yaml:"system"`
	Notes    string `yaml:"notes"`
	Classify string `yaml:"classify"`
	Analysis string `yaml:"analysis"`
	Context  string `yaml:"context"`
	Compile  string `yaml:"compile"`
	Quiz     string `yaml:"quiz"`
}

var defaultPrompts = promptText{
	System: `You help students preparing for the UPSC Civil Services Examination turn current affairs into study material. Be factual, concise and precise about names and dates.`,

	Notes: `Create UPSC-style notes for this news article.
Title: {{.Title}}
Description: {{.Description}}
{{- if .Source}}
Source: {{.Source}}{{end}}
{{- if .PublishedAt}}
Published: {{.PublishedAt}}{{end}}
{{- if .Url}}
Article URL: {{.Url}}{{end}}

Use this structure, in markdown:

# 📌 {{.Title}}

## 🎯 Key Facts
| Category | Details |
|----------|---------|
| Important Dates | ... |
| Key People/Organizations | ... |
| Statistics | ... |

## ⚖️ Constitutional/Legal Aspects
## 📚 UPSC Relevance
### Related Topics
### Potential Questions
## 🌍 Additional Context
## 📝 Summary

Keep it concise but complete. Use tables for structured data and blockquotes for historical context.`,

	Classify: `Decide whether this news article is primarily about India (its politics, economy, society or domestic affairs) or about another country or international affairs with little connection to India.

CONTENT: {{.Content}}

Respond with exactly one word: INDIA or FOREIGN`,

	Analysis: `Write a brief analysis of this {{if .India}}India-related{{else}}international{{end}} article for UPSC preparation.
Title: {{.Title}}
Content: {{.Content}}

Cover:
1. Key facts, with dates
2. Important names and roles
3. Key terms and concepts, with UPSC relevance
4. Government schemes and policies, with launch dates, objectives and recent updates
{{- if .India}}
5. Constitutional and administrative dimensions
{{- else}}
5. Implications for India and its foreign policy
{{- end}}
6. Links to the UPSC syllabus
Keep every point short.`,

	Context: `Based on this analysis:
{{.Analysis}}

Give brief context on:
1. Historical background, with dates
2. Policy implications
3. Government initiatives, with timeline and progress
4. International relations
5. Economic impact
Keep each point concise.`,

	Compile: `Compile concise UPSC notes from the material below.
Analysis: {{.Analysis}}
Context: {{.Context}}

Structure them as short bullet points under these headings:
1. Article Summary (2-3 lines)
2. Key Facts & Dates
3. Important Names & Roles
4. Key Terms & Concepts
5. Government Schemes & Policies
6. Historical Context
7. Current Affairs Context
8. UPSC Syllabus Connections
9. Policy Implications
10. Practice Questions (2-3)`,

	Quiz: `Create a quiz with {{.Questions}} UPSC Prelims style multiple-choice questions based on this news article.
Title: {{.Title}}
Description: {{.Description}}
{{- if .Content}}
Content: {{.Content}}{{end}}

Use EXACTLY this format for every question:

## Question 1
[Question text on one line]

A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]

**Answer:** [Correct option letter]
**Explanation:** [One or two sentences]

Every question must have exactly four options labelled A), B), C) and D) and exactly one correct answer.
Test understanding of the issue rather than memorization.`,
}

type promptData struct {
	articleRef
	Content   string
	Analysis  string
	Context   string
	India     bool
	Questions int
}

type Prompts struct {
	System   string
	notes    *template.Template
	classify *template.Template
	analysis *template.Template
	context  *template.Template
	compile  *template.Template
	quiz     *template.Template
}

// loadPrompts compiles the default prompts, overridden by the YAML file at
// path when path is not empty.
func loadPrompts(path string) (*Prompts, error) {
	text := defaultPrompts
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading prompt file: %w", err)
		}
		var override promptText
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("parsing prompt file %s: %w", path, err)
		}
		text = text.merge(override)
	}
	return compilePrompts(text)
}

func (p promptText) merge(o promptText) promptText {
	pick := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	pick(&p.System, o.System)
	pick(&p.Notes, o.Notes)
	pick(&p.Classify, o.Classify)
	pick(&p.Analysis, o.Analysis)
	pick(&p.Context, o.Context)
	pick(&p.Compile, o.Compile)
	pick(&p.Quiz, o.Quiz)
	return p
}

func compilePrompts(text promptText) (*Prompts, error) {
	var err error
	parse := func(name, body string) *template.Template {
		if err != nil {
			return nil
		}
		var t *template.Template
		t, err = template.New(name).Option("missingkey=error").Parse(body)
		if err != nil {
			err = fmt.Errorf("prompt %s: %w", name, err)
		}
		return t
	}
	p := &Prompts{
		System:   text.System,
		notes:    parse("notes", text.Notes),
		classify: parse("classify", text.Classify),
		analysis: parse("analysis", text.Analysis),
		context:  parse("context", text.Context),
		compile:  parse("compile", text.Compile),
		quiz:     parse("quiz", text.Quiz),
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("rendering prompt %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
