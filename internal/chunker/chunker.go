package chunker

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"memoir-rag/internal/config"
	"memoir-rag/internal/models"
)

var chapterRe = regexp.MustCompile(models.ChapterRegex)

// Chunker splits a document at chapter headings and then into overlapping
// character windows. Splitting is deterministic: the same input always yields
// the same segment sequence.
type Chunker struct {
	minChars int
	splitter textsplitter.RecursiveCharacter
}

func New(cfg *config.RAGConfig) *Chunker {
	return &Chunker{
		minChars: cfg.MinSegmentChars,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", ". "}),
		),
	}
}

// Split produces the labeled segments for a document. Text before the first
// chapter heading is labeled with models.DefaultSourceLabel. Segments shorter
// than the configured minimum are dropped (headers, stray punctuation, page
// artifacts).
func (c *Chunker) Split(text string) ([]models.Segment, error) {
	var segments []models.Segment
	for _, span := range splitByChapter(text) {
		windows, err := c.splitter.SplitText(span.text)
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			w = strings.TrimSpace(w)
			if len(w) < c.minChars {
				continue
			}
			segments = append(segments, models.Segment{
				Text:        w,
				SourceLabel: span.label,
			})
		}
	}
	return segments, nil
}

type chapterSpan struct {
	label string
	text  string
}

// splitByChapter cuts the document at every chapter heading. The heading line
// itself becomes the label of the span that follows it.
func splitByChapter(text string) []chapterSpan {
	headings := chapterRe.FindAllStringIndex(text, -1)

	var spans []chapterSpan
	appendSpan := func(label, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		spans = append(spans, chapterSpan{label: label, text: body})
	}

	if len(headings) == 0 {
		appendSpan(models.DefaultSourceLabel, text)
		return spans
	}

	appendSpan(models.DefaultSourceLabel, text[:headings[0][0]])
	for i, h := range headings {
		label := strings.TrimSpace(text[h[0]:h[1]])
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		appendSpan(label, text[h[1]:end])
	}
	return spans
}
