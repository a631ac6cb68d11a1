package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rcbilson/newsnotes/quiz"
	"gotest.tools/assert"
)

func testQuestions() []quiz.Question {
	return quiz.Parse(`## Question 1
Capital of France?
A) Paris
B) Lyon
**Answer:** A
## Question 2
River through Paris?
A) Loire
B) Seine
**Answer:** B
`)
}

func TestSessionQuiz(t *testing.T) {
	s := newSession("s1")

	assert.Equal(t, errNoQuiz, s.Select("art", 1, "A) Paris"))
	_, err := s.Submit("art")
	assert.Equal(t, errNoQuiz, err)

	s.SetQuiz("art", "Title", "http://example.com", testQuestions())
	assert.Equal(t, errUnknownQuestion, s.Select("art", 3, "A) Paris"))
	assert.Equal(t, errUnknownOption, s.Select("art", 1, "C) Nice"))
	assert.NilError(t, s.Select("art", 1, "A) Paris"))
	assert.NilError(t, s.Select("art", 2, "B) Seine"))

	result, err := s.Submit("art")
	assert.NilError(t, err)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 100.0, result.Percent)

	q, ok := s.Quiz("art")
	assert.Assert(t, ok)
	assert.Assert(t, q.Submitted)

	// changing an answer reopens the quiz
	assert.NilError(t, s.Select("art", 2, "A) Loire"))
	q, _ = s.Quiz("art")
	assert.Assert(t, !q.Submitted)
	assert.Equal(t, "A) Loire", q.Selections[2])

	// the returned state is a copy
	q.Selections[1] = "B) Lyon"
	q, _ = s.Quiz("art")
	assert.Equal(t, "A) Paris", q.Selections[1])
}

func TestSessionQuizReplaced(t *testing.T) {
	s := newSession("s1")
	s.SetQuiz("art", "Title", "http://example.com", testQuestions())
	assert.NilError(t, s.Select("art", 1, "A) Paris"))

	s.SetQuiz("art", "Title", "http://example.com", testQuestions())
	q, _ := s.Quiz("art")
	assert.Equal(t, 0, len(q.Selections))
}

func TestSessionNotes(t *testing.T) {
	s := newSession("s1")
	_, ok := s.Notes("x")
	assert.Assert(t, !ok)

	s.SetNotes(noteEntry{Id: "b", Title: "Beta"})
	s.SetNotes(noteEntry{Id: "a", Title: "Alpha"})
	n, ok := s.Notes("b")
	assert.Assert(t, ok)
	assert.Equal(t, "Beta", n.Title)

	all := s.AllNotes()
	assert.Equal(t, 2, len(all))
	assert.Equal(t, "Alpha", all[0].Title)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()

	s := store.Get("")
	assert.Assert(t, s.Id != "")
	assert.Equal(t, s, store.Get(s.Id))

	// unknown ids don't get adopted
	other := store.Get("forged")
	assert.Assert(t, other.Id != "forged")
	assert.Equal(t, 2, store.Len())

	assert.Equal(t, 0, store.Expire(time.Hour))
	other.touch(time.Now().Add(-2 * time.Hour))
	assert.Equal(t, 1, store.Expire(time.Hour))
	assert.Equal(t, 1, store.Len())
}

func TestWithSession(t *testing.T) {
	store := NewSessionStore()
	var seen []*Session
	h := withSession(store, time.Hour)(func(w http.ResponseWriter, r *http.Request, s *Session) {
		seen = append(seen, s)
	})

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	cookies := w.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.Equal(t, seen[0].Id, cookies[0].Value)

	// presenting the cookie returns the same session without a new cookie
	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	h(w, req)
	assert.Equal(t, 0, len(w.Result().Cookies()))
	assert.Equal(t, seen[0], seen[1])
}
