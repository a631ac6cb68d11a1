package main

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rcbilson/newsnotes/quiz"
)

var (
	errNoQuiz          = errors.New("no quiz for this article")
	errUnknownQuestion = errors.New("no such question")
	errUnknownOption   = errors.New("not one of the question's options")
	errNoNotes         = errors.New("no notes for this article")
)

type noteEntry struct {
	Id       string `json:"id"`
	Url      string `json:"url"`
	Title    string `json:"title"`
	Contents string `json:"contents"`
	Detailed bool   `json:"detailed"`
}

type quizState struct {
	Title      string
	Url        string
	Questions  []quiz.Question
	Selections map[int]string
	Submitted  bool
}

// Session is everything one student has generated or answered. Notes and
// quizzes are keyed by article ID.
type Session struct {
	Id string

	mu       sync.Mutex
	lastSeen time.Time
	notes    map[string]noteEntry
	quizzes  map[string]*quizState
}

func newSession(id string) *Session {
	return &Session{
		Id:       id,
		lastSeen: time.Now(),
		notes:    map[string]noteEntry{},
		quizzes:  map[string]*quizState{},
	}
}

func (s *Session) SetNotes(n noteEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[n.Id] = n
}

func (s *Session) Notes(id string) (noteEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	return n, ok
}

func (s *Session) AllNotes() []noteEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]noteEntry, 0, len(s.notes))
	for _, n := range s.notes {
		list = append(list, n)
	}
	slices.SortFunc(list, func(a, b noteEntry) int {
		return strings.Compare(a.Title, b.Title)
	})
	return list
}

// SetQuiz replaces any earlier quiz for the article along with its answers.
func (s *Session) SetQuiz(id, title, url string, questions []quiz.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[id] = &quizState{
		Title:      title,
		Url:        url,
		Questions:  questions,
		Selections: map[int]string{},
	}
}

// Quiz returns a copy of the article's quiz state.
func (s *Session) Quiz(id string) (quizState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return quizState{}, false
	}
	state := *q
	state.Selections = make(map[int]string, len(q.Selections))
	for k, v := range q.Selections {
		state.Selections[k] = v
	}
	return state, true
}

// Select records option as the answer to question number. A new selection
// after submission reopens the quiz.
func (s *Session) Select(id string, number int, option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return errNoQuiz
	}
	for _, question := range q.Questions {
		if question.Number != number {
			continue
		}
		if !slices.Contains(question.Options, option) {
			return errUnknownOption
		}
		q.Selections[number] = option
		q.Submitted = false
		return nil
	}
	return errUnknownQuestion
}

func (s *Session) Submit(id string) (quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return quiz.Result{}, errNoQuiz
	}
	q.Submitted = true
	return quiz.Grade(q.Questions, q.Selections), nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*Session{}}
}

// Get returns the session for id, creating a fresh one under a new id when
// id is unknown.
func (store *SessionStore) Get(id string) *Session {
	store.mu.Lock()
	defer store.mu.Unlock()
	s, ok := store.sessions[id]
	if !ok {
		s = newSession(uuid.NewString())
		store.sessions[s.Id] = s
	}
	s.touch(time.Now())
	return s
}

// Expire drops sessions idle for longer than maxIdle and returns how many
// were dropped.
func (store *SessionStore) Expire(maxIdle time.Duration) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	now := time.Now()
	dropped := 0
	for id, s := range store.sessions {
		if s.idleSince(now) > maxIdle {
			delete(store.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (store *SessionStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sessions)
}
