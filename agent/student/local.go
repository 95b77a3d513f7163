package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	datafilex "github.com/tanpawarit/Chative-Student-Advisor/pkg/datafile"
	lazyx "github.com/tanpawarit/Chative-Student-Advisor/pkg/lazy"
)

// LocalProvider serves students from a static record file.
type LocalProvider struct {
	records *lazyx.Value[map[string]Student]
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(path string) *LocalProvider {
	return &LocalProvider{
		records: lazyx.New[map[string]Student](func(ctx context.Context) (map[string]Student, error) {
			return loadRecords(path)
		}),
	}
}

// NewStaticProvider serves the given records; used by tests and demos.
func NewStaticProvider(students ...Student) *LocalProvider {
	byID := make(map[string]Student, len(students))
	for _, s := range students {
		s.CoursesTaken = normalizeTaken(s.CoursesTaken)
		byID[s.StudentID] = s
	}
	return &LocalProvider{
		records: lazyx.New[map[string]Student](func(context.Context) (map[string]Student, error) {
			return byID, nil
		}),
	}
}

func (p *LocalProvider) Student(ctx context.Context, studentID string) (Student, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return Student{}, fmt.Errorf("%w: student_id is required", contractx.ErrInvalidArgument)
	}

	records, err := p.records.Get(ctx)
	if err != nil {
		return Student{}, err
	}
	st, ok := records[id]
	if !ok {
		return Student{}, fmt.Errorf("%w: %s", contractx.ErrStudentNotFound, id)
	}
	st.CoursesTaken = append([]string{}, st.CoursesTaken...)
	return st, nil
}

func loadRecords(path string) (map[string]Student, error) {
	var rows []Student
	if err := datafilex.Decode(path, &rows); err != nil {
		return nil, fmt.Errorf("%w: student records: %v", contractx.ErrDataUnavailable, err)
	}

	byID := make(map[string]Student, len(rows))
	for i, s := range rows {
		id := strings.TrimSpace(s.StudentID)
		if id == "" {
			return nil, fmt.Errorf("%w: student record #%d has empty student_id", contractx.ErrDataUnavailable, i)
		}
		if _, dup := byID[id]; dup {
			continue
		}
		s.StudentID = id
		s.CoursesTaken = normalizeTaken(s.CoursesTaken)
		byID[id] = s
	}

	log.Info().Str("path", path).Int("students", len(byID)).Msg("student records loaded")
	return byID, nil
}
