package faq

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
)

func sampleEntries() []Entry {
	return []Entry{
		{Question: "What is the deadline to drop a course?", Answer: "Week 6 of the term."},
		{Question: "How do I contact my academic advisor?", Answer: "Email advising@example.edu."},
		{Question: "Where can I find the course catalog?", Answer: "On the registrar website."},
	}
}

func newTestIndex(t *testing.T, entries []Entry, opts ...Option) *Index {
	t.Helper()
	idx, err := NewIndex(entries, opts...)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	return idx
}

func TestAnswerExactMatchIgnoresCaseAndSpace(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, sampleEntries())
	got, err := idx.Answer("  WHAT IS THE DEADLINE TO DROP A COURSE?  ")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "Week 6 of the term." {
		t.Fatalf("Answer() = %q", got.Answer)
	}
	if got.Score != 1 {
		t.Fatalf("Score = %v, want 1", got.Score)
	}
}

func TestAnswerCloseParaphrase(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, sampleEntries())
	got, err := idx.Answer("what is the deadline to add a course?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "Week 6 of the term." {
		t.Fatalf("Answer() = %q, want drop deadline answer", got.Answer)
	}
	if got.Score < DefaultCutoff || got.Score >= 1 {
		t.Fatalf("Score = %v, want within [%v, 1)", got.Score, DefaultCutoff)
	}
}

func TestAnswerNoMatch(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, sampleEntries())
	for _, q := range []string{"zzzz qqqq xxxx", "", "   "} {
		if _, err := idx.Answer(q); !errors.Is(err, contractx.ErrNoMatch) {
			t.Fatalf("Answer(%q) error = %v, want ErrNoMatch", q, err)
		}
	}
}

func TestAnswerTiePrefersEarliestQuestion(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, []Entry{
		{Question: "abc", Answer: "first"},
		{Question: "abd", Answer: "second"},
	})
	if a, b := Similarity("abc", "ab"), Similarity("abd", "ab"); a != b {
		t.Fatalf("fixture scores differ: %v vs %v", a, b)
	}

	got, err := idx.Answer("ab")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "first" {
		t.Fatalf("Answer() = %q, want first", got.Answer)
	}
}

func TestNewIndexDuplicateQuestionKeepsFirst(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t, []Entry{
		{Question: "When does registration open?", Answer: "first"},
		{Question: "  when does registration open?", Answer: "second"},
	})
	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	got, err := idx.Answer("when does registration open?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "first" {
		t.Fatalf("Answer() = %q, want first", got.Answer)
	}
}

func TestNewIndexRejectsBlankQuestion(t *testing.T) {
	t.Parallel()

	if _, err := NewIndex([]Entry{{Question: "  ", Answer: "x"}}); !errors.Is(err, contractx.ErrDataUnavailable) {
		t.Fatalf("NewIndex() error = %v, want ErrDataUnavailable", err)
	}
}

func TestAnswerCachedResultsAreStable(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 4} {
		idx := newTestIndex(t, sampleEntries(), WithCacheSize(size))
		first, err := idx.Answer("where can i find the course catalog")
		if err != nil {
			t.Fatalf("size=%d Answer() error = %v", size, err)
		}
		second, err := idx.Answer("where can i find the course catalog")
		if err != nil {
			t.Fatalf("size=%d second Answer() error = %v", size, err)
		}
		if first != second {
			t.Fatalf("size=%d cached answer %+v != %+v", size, second, first)
		}
		for i := 0; i < 2; i++ {
			if _, err := idx.Answer("nothing like it 123"); !errors.Is(err, contractx.ErrNoMatch) {
				t.Fatalf("size=%d miss #%d error = %v", size, i, err)
			}
		}
	}
}

func TestServiceLoadsFileLazily(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "faqs.yaml")
	content := `
- question: How many credits is a full load?
  answer: Twelve credits.
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write faqs: %v", err)
	}

	svc := NewService(path)
	got, err := svc.Answer(context.Background(), "how many credits is a full load?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Answer != "Twelve credits." {
		t.Fatalf("Answer() = %q", got.Answer)
	}
}

func TestServiceMissingFile(t *testing.T) {
	t.Parallel()

	svc := NewService(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := svc.Answer(context.Background(), "anything"); !errors.Is(err, contractx.ErrDataUnavailable) {
		t.Fatalf("Answer() error = %v, want ErrDataUnavailable", err)
	}
}
