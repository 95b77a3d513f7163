package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	datafilex "github.com/tanpawarit/Chative-Student-Advisor/pkg/datafile"
)

// Source is the backing store the catalog is read from. Each method is
// called at most once per successful load; the Store caches the result.
type Source interface {
	LoadCourses(ctx context.Context) ([]Course, error)
	LoadOfferings(ctx context.Context) ([]TermOffering, error)
}

// FileSource reads the catalog and offerings from YAML or JSON files.
type FileSource struct {
	CoursesPath   string
	OfferingsPath string
}

var _ Source = FileSource{}

func (f FileSource) LoadCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := datafilex.Decode(f.CoursesPath, &courses); err != nil {
		return nil, fmt.Errorf("%w: course catalog: %v", contractx.ErrDataUnavailable, err)
	}
	if err := validateCourses(courses); err != nil {
		return nil, err
	}

	log.Info().Str("path", f.CoursesPath).Int("courses", len(courses)).Msg("course catalog loaded")
	return normalizeCourses(courses), nil
}

func (f FileSource) LoadOfferings(ctx context.Context) ([]TermOffering, error) {
	var offerings []TermOffering
	if err := datafilex.Decode(f.OfferingsPath, &offerings); err != nil {
		return nil, fmt.Errorf("%w: term offerings: %v", contractx.ErrDataUnavailable, err)
	}
	if err := validateOfferings(offerings); err != nil {
		return nil, err
	}

	log.Info().Str("path", f.OfferingsPath).Int("offerings", len(offerings)).Msg("term offerings loaded")
	return offerings, nil
}
