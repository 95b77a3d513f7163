package student

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	catalogx "github.com/tanpawarit/Chative-Student-Advisor/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	"github.com/uptrace/bun"
)

const defaultQueryTimeout = 5 * time.Second

type progressRow struct {
	bun.BaseModel `bun:"table:student_progress,alias:sp"`

	StudentID          string `bun:"student_id,pk"`
	CoursesStillNeeded string `bun:"courses_still_needed"`
}

// CourseLister is the part of the catalog needed to turn a "still needed"
// list back into a taken list.
type CourseLister interface {
	Courses(ctx context.Context) ([]catalogx.Course, error)
}

// RemoteProvider queries the analytical store, which reports per student the
// comma-separated list of catalog courses still needed.
type RemoteProvider struct {
	db      bun.IDB
	catalog CourseLister
	timeout time.Duration
}

var _ Provider = (*RemoteProvider)(nil)

type RemoteOption func(*RemoteProvider)

func WithQueryTimeout(d time.Duration) RemoteOption {
	return func(p *RemoteProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewRemoteProvider(db bun.IDB, catalog CourseLister, opts ...RemoteOption) (*RemoteProvider, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}

	p := &RemoteProvider{
		db:      db,
		catalog: catalog,
		timeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *RemoteProvider) Student(ctx context.Context, studentID string) (Student, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return Student{}, fmt.Errorf("%w: student_id is required", contractx.ErrInvalidArgument)
	}

	queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var row progressRow
	err := p.db.NewSelect().
		Model(&row).
		Where("student_id = ?", id).
		Limit(1).
		Scan(queryCtx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, fmt.Errorf("%w: %s", contractx.ErrStudentNotFound, id)
		}
		log.Error().Err(err).Str("student_id", id).Msg("student progress query failed")
		return Student{}, fmt.Errorf("%w: student progress query: %v", contractx.ErrDataUnavailable, err)
	}

	courses, err := p.catalog.Courses(ctx)
	if err != nil {
		return Student{}, err
	}

	return Student{
		StudentID:    row.StudentID,
		CoursesTaken: takenFromStillNeeded(courses, ParseCourseList(row.CoursesStillNeeded)),
	}, nil
}

// ParseCourseList splits a comma-separated course list, dropping blanks.
func ParseCourseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	return normalizeTaken(strings.Split(raw, ","))
}

func takenFromStillNeeded(courses []catalogx.Course, stillNeeded []string) []string {
	needed := make(map[string]struct{}, len(stillNeeded))
	for _, id := range stillNeeded {
		needed[id] = struct{}{}
	}

	taken := make([]string, 0, len(courses))
	for _, c := range courses {
		if _, ok := needed[c.CourseID]; !ok {
			taken = append(taken, c.CourseID)
		}
	}
	return normalizeTaken(taken)
}
