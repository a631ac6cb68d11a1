package quiz

import "strings"

// Verdict records how one question was answered.
type Verdict struct {
	Number   int    `json:"number"`
	Selected string `json:"selected,omitempty"`
	Answer   string `json:"answer,omitempty"`
	Correct  bool   `json:"correct"`
}

// Result is the outcome of grading a whole quiz.
type Result struct {
	Correct  int       `json:"correct"`
	Total    int       `json:"total"`
	Percent  float64   `json:"percent"`
	Feedback string    `json:"feedback"`
	Verdicts []Verdict `json:"verdicts"`
}

const (
	FeedbackExcellent = "Excellent! You're performing at the level required for UPSC Prelims. Keep it up!"
	FeedbackGood      = "Good attempt! You're on the right track for UPSC preparation, but need more practice."
	FeedbackStudy     = "Keep studying! Regular practice with current affairs will improve your UPSC readiness."
)

// Correct reports whether the selected option matches the recorded answer.
// Options keep their "A)" label, so a prefix match against the answer letter
// is enough.
func Correct(selected, answer string) bool {
	if selected == "" || answer == "" {
		return false
	}
	return strings.HasPrefix(selected, answer)
}

// Grade scores selections, keyed by question number, against questions.
// Questions without a selection count as wrong.
func Grade(questions []Question, selections map[int]string) Result {
	r := Result{Total: len(questions), Verdicts: make([]Verdict, 0, len(questions))}
	for _, q := range questions {
		v := Verdict{Number: q.Number, Selected: selections[q.Number], Answer: q.Answer}
		v.Correct = Correct(v.Selected, q.Answer)
		if v.Correct {
			r.Correct++
		}
		r.Verdicts = append(r.Verdicts, v)
	}
	if r.Total > 0 {
		r.Percent = float64(r.Correct) / float64(r.Total) * 100
	}
	r.Feedback = feedback(r.Percent)
	return r
}

func feedback(percent float64) string {
	switch {
	case percent >= 80:
		return FeedbackExcellent
	case percent >= 60:
		return FeedbackGood
	default:
		return FeedbackStudy
	}
}
