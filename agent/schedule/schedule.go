// Package schedule validates and records the courses a student picks for a term.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	studentx "github.com/tanpawarit/Chative-Student-Advisor/agent/student"
)

// RenderedTopic labels notifications published after a schedule is saved.
const RenderedTopic = "schedule.rendered"

// ConfirmationMessage is returned to the student when a schedule is saved.
const ConfirmationMessage = "Your schedule has been updated with the selected courses."

type Schedule struct {
	ID           string            `json:"id"`
	StudentID    string            `json:"student_id"`
	Term         string            `json:"term"`
	Year         int               `json:"year"`
	Courses      []catalogx.Course `json:"courses"`
	TotalCredits int               `json:"total_credits"`
	RenderedAt   time.Time         `json:"rendered_at"`
}

func (s Schedule) Key() Key {
	return NewKey(s.StudentID, s.Term, s.Year)
}

func (s Schedule) CourseIDs() []string {
	out := make([]string, 0, len(s.Courses))
	for _, c := range s.Courses {
		out = append(out, c.CourseID)
	}
	return out
}

// Key identifies one student's schedule for one term. Term is stored lower-cased.
type Key struct {
	StudentID string
	Term      string
	Year      int
}

func NewKey(studentID, term string, year int) Key {
	return Key{
		StudentID: strings.TrimSpace(studentID),
		Term:      strings.ToLower(strings.TrimSpace(term)),
		Year:      year,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.StudentID, k.Term, k.Year)
}

func (k Key) validate() error {
	if k.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", contractx.ErrInvalidArgument)
	}
	if k.Term == "" {
		return fmt.Errorf("%w: term is required", contractx.ErrInvalidArgument)
	}
	return nil
}

// Store persists schedules. Get reports contract.ErrNotFound for unknown keys.
type Store interface {
	Get(ctx context.Context, key Key) (Schedule, error)
	Put(ctx context.Context, s Schedule) error
	Delete(ctx context.Context, key Key) error
}

// Eligibility is the resolver call used to validate a selection.
type Eligibility interface {
	Enrollable(ctx context.Context, term string, year any, student studentx.Student) ([]catalogx.Course, error)
}

// Notifier receives a copy of every saved schedule.
type Notifier interface {
	Publish(ctx context.Context, topic string, body []byte) error
}

type Planner struct {
	eligibility Eligibility
	store       Store
	notifier    Notifier
	now         func() time.Time
}

type Option func(*Planner)

func WithNotifier(n Notifier) Option {
	return func(p *Planner) {
		p.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPlanner(eligibility Eligibility, store Store, opts ...Option) (*Planner, error) {
	if eligibility == nil {
		return nil, errors.New("eligibility resolver is required")
	}
	if store == nil {
		return nil, errors.New("schedule store is required")
	}
	p := &Planner{
		eligibility: eligibility,
		store:       store,
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// Render checks that every selected course is enrollable for the student,
// then saves the de-duplicated, sorted selection as the term schedule.
func (p *Planner) Render(ctx context.Context, student studentx.Student, term string, year any, courseIDs []string) (Schedule, error) {
	y, err := catalogx.ParseYear(year)
	if err != nil {
		return Schedule{}, err
	}
	key := NewKey(student.StudentID, term, y)
	if err := key.validate(); err != nil {
		return Schedule{}, err
	}

	selected := normalizeIDs(courseIDs)
	if len(selected) == 0 {
		return Schedule{}, fmt.Errorf("%w: course_ids must name at least one course", contractx.ErrInvalidArgument)
	}

	enrollable, err := p.eligibility.Enrollable(ctx, term, y, student)
	if err != nil {
		return Schedule{}, err
	}
	byID := make(map[string]catalogx.Course, len(enrollable))
	for _, c := range enrollable {
		byID[c.CourseID] = c
	}

	courses := make([]catalogx.Course, 0, len(selected))
	var rejected []string
	credits := 0
	for _, id := range selected {
		c, ok := byID[id]
		if !ok {
			rejected = append(rejected, id)
			continue
		}
		courses = append(courses, c)
		credits += c.Credits
	}
	if len(rejected) > 0 {
		return Schedule{}, fmt.Errorf("%w: not enrollable in %s %d: %s",
			contractx.ErrInvalidArgument, strings.TrimSpace(term), y, strings.Join(rejected, ", "))
	}

	s := Schedule{
		ID:           uuid.NewString(),
		StudentID:    key.StudentID,
		Term:         key.Term,
		Year:         key.Year,
		Courses:      courses,
		TotalCredits: credits,
		RenderedAt:   p.now().UTC(),
	}
	if err := p.store.Put(ctx, s); err != nil {
		return Schedule{}, fmt.Errorf("%w: save schedule: %v", contractx.ErrDataUnavailable, err)
	}
	log.Info().
		Str("schedule_id", s.ID).
		Str("student_id", s.StudentID).
		Str("term", s.Term).
		Int("year", s.Year).
		Strs("courses", s.CourseIDs()).
		Msg("schedule rendered")

	p.publish(ctx, s)
	return s, nil
}

// Current returns the saved schedule for (student, term, year).
func (p *Planner) Current(ctx context.Context, studentID, term string, year any) (Schedule, error) {
	y, err := catalogx.ParseYear(year)
	if err != nil {
		return Schedule{}, err
	}
	key := NewKey(studentID, term, y)
	if err := key.validate(); err != nil {
		return Schedule{}, err
	}
	return p.store.Get(ctx, key)
}

// publish is best effort; a failed notification never fails the render.
func (p *Planner) publish(ctx context.Context, s Schedule) {
	if p.notifier == nil {
		return
	}
	body, err := json.Marshal(s)
	if err != nil {
		log.Warn().Err(err).Str("schedule_id", s.ID).Msg("encode schedule notification")
		return
	}
	if err := p.notifier.Publish(ctx, RenderedTopic, body); err != nil {
		log.Warn().Err(err).Str("schedule_id", s.ID).Msg("publish schedule notification")
	}
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
