package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	"github.com/uptrace/bun"
)

type courseRow struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	CourseID      string   `bun:"course_id,pk"`
	Title         string   `bun:"title"`
	Description   string   `bun:"description"`
	Credits       int      `bun:"credits"`
	Prerequisites []string `bun:"prerequisites,array"`
}

type offeringRow struct {
	bun.BaseModel `bun:"table:term_offerings,alias:o"`

	Term    string   `bun:"term,pk"`
	Year    int      `bun:"year,pk"`
	Courses []string `bun:"courses,array"`
}

// PostgresSource reads the catalog from the courses and term_offerings tables.
type PostgresSource struct {
	db bun.IDB
}

var _ Source = (*PostgresSource)(nil)

func NewPostgresSource(db bun.IDB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) LoadCourses(ctx context.Context) ([]Course, error) {
	var rows []courseRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("course_id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: query courses: %v", contractx.ErrDataUnavailable, err)
	}

	courses := make([]Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, Course{
			CourseID:      r.CourseID,
			Title:         r.Title,
			Description:   r.Description,
			Credits:       r.Credits,
			Prerequisites: r.Prerequisites,
		})
	}
	if err := validateCourses(courses); err != nil {
		return nil, err
	}

	log.Info().Int("courses", len(courses)).Msg("course catalog loaded from postgres")
	return normalizeCourses(courses), nil
}

func (s *PostgresSource) LoadOfferings(ctx context.Context) ([]TermOffering, error) {
	var rows []offeringRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("year ASC, term ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: query term offerings: %v", contractx.ErrDataUnavailable, err)
	}

	offerings := make([]TermOffering, 0, len(rows))
	for _, r := range rows {
		offerings = append(offerings, TermOffering{
			Term:    r.Term,
			Year:    r.Year,
			Courses: r.Courses,
		})
	}
	if err := validateOfferings(offerings); err != nil {
		return nil, err
	}

	log.Info().Int("offerings", len(offerings)).Msg("term offerings loaded from postgres")
	return offerings, nil
}
