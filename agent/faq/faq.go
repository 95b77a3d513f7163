// Package faq answers free-text questions from a canned question/answer list
// using approximate string matching.
package faq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	datafilex "github.com/tanpawarit/Chative-Student-Advisor/pkg/datafile"
	lazyx "github.com/tanpawarit/Chative-Student-Advisor/pkg/lazy"
)

const (
	DefaultCutoff    = 0.6
	defaultCacheSize = 256
)

// FallbackMessage is shown to the student when no stored question is close enough.
const FallbackMessage = "I'm sorry, I don't have an answer to that question yet. " +
	"Please try rephrasing or contact your academic advisor."

type Entry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

type Answer struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float64 `json:"score"`
}

type cached struct {
	answer Answer
	found  bool
}

// Index is the immutable, normalized question list plus a memo of past lookups.
type Index struct {
	entries   []Entry
	cutoff    float64
	cacheSize int
	cache     *lru.Cache[string, cached]
}

type Option func(*Index)

func WithCutoff(cutoff float64) Option {
	return func(i *Index) {
		if cutoff > 0 && cutoff <= 1 {
			i.cutoff = cutoff
		}
	}
}

// WithCacheSize bounds the lookup memo. Zero disables it.
func WithCacheSize(size int) Option {
	return func(i *Index) {
		if size >= 0 {
			i.cacheSize = size
		}
	}
}

func NewIndex(entries []Entry, opts ...Option) (*Index, error) {
	idx := &Index{
		cutoff:    DefaultCutoff,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(idx)
		}
	}

	seen := make(map[string]struct{}, len(entries))
	idx.entries = make([]Entry, 0, len(entries))
	for i, e := range entries {
		q := Normalize(e.Question)
		if q == "" {
			return nil, fmt.Errorf("%w: faq #%d has empty question", contractx.ErrDataUnavailable, i)
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		idx.entries = append(idx.entries, Entry{Question: q, Answer: e.Answer})
	}

	if idx.cacheSize > 0 {
		cache, err := lru.New[string, cached](idx.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create faq cache: %w", err)
		}
		idx.cache = cache
	}
	return idx, nil
}

// LoadFile reads a [{question, answer}] YAML or JSON file into an Index.
func LoadFile(path string, opts ...Option) (*Index, error) {
	var entries []Entry
	if err := datafilex.Decode(path, &entries); err != nil {
		return nil, fmt.Errorf("%w: faq: %v", contractx.ErrDataUnavailable, err)
	}
	idx, err := NewIndex(entries, opts...)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("questions", idx.Len()).Msg("faq index loaded")
	return idx, nil
}

func (i *Index) Len() int {
	return len(i.entries)
}

// Answer returns the stored answer whose question is most similar to
// question. Scores below the cutoff yield contract.ErrNoMatch; among equal
// scores the earliest stored question wins.
func (i *Index) Answer(question string) (Answer, error) {
	q := Normalize(question)

	if i.cache != nil {
		if hit, ok := i.cache.Get(q); ok {
			if !hit.found {
				return Answer{}, contractx.ErrNoMatch
			}
			return hit.answer, nil
		}
	}

	best, found := i.match(q)
	if i.cache != nil {
		i.cache.Add(q, cached{answer: best, found: found})
	}
	if !found {
		return Answer{}, contractx.ErrNoMatch
	}
	return best, nil
}

func (i *Index) match(q string) (Answer, bool) {
	if q == "" {
		return Answer{}, false
	}

	query := splitChars(q)
	var (
		best  Answer
		found bool
	)
	for _, e := range i.entries {
		m := difflib.NewMatcher(splitChars(e.Question), query)
		if m.RealQuickRatio() < i.cutoff || m.QuickRatio() < i.cutoff {
			continue
		}
		score := m.Ratio()
		if score < i.cutoff {
			continue
		}
		if !found || score > best.Score {
			best = Answer{Question: e.Question, Answer: e.Answer, Score: score}
			found = true
		}
	}
	return best, found
}

// Normalize trims and lower-cases a question.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Similarity is the difflib ratio between two already-normalized strings.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	return strings.Split(s, "")
}

// Service loads the FAQ file on first use and answers from it afterwards.
type Service struct {
	index *lazyx.Value[*Index]
}

func NewService(path string, opts ...Option) *Service {
	return &Service{
		index: lazyx.New[*Index](func(context.Context) (*Index, error) {
			return LoadFile(path, opts...)
		}),
	}
}

// NewStaticService serves a prebuilt index.
func NewStaticService(idx *Index) (*Service, error) {
	if idx == nil {
		return nil, errors.New("faq index is required")
	}
	return &Service{
		index: lazyx.New[*Index](func(context.Context) (*Index, error) {
			return idx, nil
		}),
	}, nil
}

func (s *Service) Answer(ctx context.Context, question string) (Answer, error) {
	idx, err := s.index.Get(ctx)
	if err != nil {
		return Answer{}, err
	}
	return idx.Answer(question)
}
