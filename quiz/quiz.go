// Package quiz turns the markdown quiz text produced by a language model into
// structured questions and grades a student's selections against them.
package quiz

import (
	"regexp"
	"strings"
)

// Question is one multiple-choice question recovered from quiz markdown.
type Question struct {
	Number      int      `json:"number"`
	Text        string   `json:"text"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

const (
	answerMarker      = "Answer:"
	explanationMarker = "Explanation:"
)

var (
	questionHeader = regexp.MustCompile(`(?m)^[ \t]*#+[ \t]*Question[ \t]*\d+`)
	optionPrefixes = []string{"A)", "B)", "C)", "D)"}
)

// Parse splits quiz markdown on its "## Question N" headers and returns the
// questions in order of appearance. Text that doesn't follow the template
// yields fewer questions, or none, rather than an error.
func Parse(text string) []Question {
	questions := []Question{}

	bounds := questionHeader.FindAllStringIndex(text, -1)
	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		q, ok := parseBlock(text[b[1]:end])
		if !ok {
			continue
		}
		q.Number = len(questions) + 1
		questions = append(questions, q)
	}
	return questions
}

func parseBlock(block string) (Question, bool) {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Question{}, false
	}

	q := Question{Options: []string{}}

	// Whatever followed "Question N" on the header line comes first; a bare
	// header leaves the prompt on the next line.
	first := 0
	for ; first < len(lines); first++ {
		q.Text = questionText(lines[first])
		if q.Text != "" {
			break
		}
	}

	for _, line := range lines[min(first+1, len(lines)):] {
		switch {
		case isOption(line):
			q.Options = append(q.Options, line)
		case strings.Contains(line, answerMarker):
			q.Answer = afterMarker(line, answerMarker)
		case strings.Contains(line, explanationMarker):
			q.Explanation = afterMarker(line, explanationMarker)
		}
	}
	return q, true
}

func questionText(line string) string {
	line = strings.TrimLeft(line, "# ")
	line = strings.TrimLeft(line, ":.)-– ")
	return strings.TrimSpace(line)
}

func isOption(line string) bool {
	for _, p := range optionPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// afterMarker returns the text following marker with bold asterisks and
// surrounding whitespace removed, so "**Answer:** A" and "Answer: A" agree.
func afterMarker(line, marker string) string {
	i := strings.Index(line, marker)
	return strings.Trim(line[i+len(marker):], "* \t")
}
