// Package knowledge loads the product knowledge base and retrieves the
// chunks most relevant to a detected intent. Scoring is keyword-based and
// local; no model call is involved.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Chunk is one scored section of a knowledge base document.
type Chunk struct {
	Source         string  `json:"source"`
	Section        string  `json:"section"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevanceScore"`
}

// Context is the retrieval result handed to downstream stages.
type Context struct {
	Chunks       []Chunk `json:"chunks"`
	DesignSystem string  `json:"designSystem"`
}

const (
	// maxChunkChars caps one chunk's content.
	maxChunkChars = 2000
	// maxTotalChars caps the combined content of all returned chunks.
	maxTotalChars = 50000
	// maxChunks caps the number of returned chunks.
	maxChunks = 10
)

var stopWords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "have": true,
	"been": true, "will": true, "would": true, "could": true, "should": true,
	"more": true, "most": true, "also": true, "just": true, "than": true,
	"then": true, "when": true, "what": true, "which": true, "where": true,
	"were": true, "there": true, "their": true, "they": true, "them": true,
	"some": true, "such": true, "into": true, "over": true, "only": true,
	"very": true, "each": true, "every": true, "about": true, "after": true,
	"before": true, "between": true, "through": true, "during": true,
	"without": true, "again": true, "does": true, "done": true, "want": true,
	"give": true, "make": true, "made": true, "like": true, "good": true,
	"best": true, "much": true, "well": true, "here": true, "your": true,
	"page": true, "better": true, "dont": true, "talk": true, "enough": true,
}

// Retriever loads and scores knowledge base documents under a base dir.
type Retriever struct {
	baseDir string
	ds      DesignSystem
}

// NewRetriever creates a retriever for the given knowledge base directory.
// The design system reference is loaded once, here.
func NewRetriever(baseDir string) (*Retriever, error) {
	ds, err := loadDesignSystem(baseDir)
	if err != nil {
		return nil, err
	}
	return &Retriever{baseDir: baseDir, ds: ds}, nil
}

// DesignSystem returns the loaded design system reference.
func (r *Retriever) DesignSystem() DesignSystem {
	return r.ds
}

// Retrieve returns the chunks most relevant to the given intent text,
// ranked by keyword score. A missing knowledge base yields an empty
// context, not an error: retrieval degrades, it does not fail the run.
func (r *Retriever) Retrieve(details string, affectedAreas []string) (*Context, error) {
	keywords := extractKeywords(details, affectedAreas)

	docs, err := r.loadDocuments()
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, doc := range docs {
		for _, sec := range splitSections(doc.path, doc.content) {
			score := scoreRelevance(sec.Content, keywords)
			if score <= 0 {
				continue
			}
			sec.RelevanceScore = score
			sec.Content = truncateOnRune(sec.Content, maxChunkChars)
			chunks = append(chunks, sec)
		}
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].RelevanceScore > chunks[j].RelevanceScore
	})

	total := 0
	var top []Chunk
	for _, c := range chunks {
		if len(top) >= maxChunks || total+len(c.Content) > maxTotalChars {
			break
		}
		total += len(c.Content)
		top = append(top, c)
	}

	return &Context{
		Chunks:       top,
		DesignSystem: r.ds.Summary(),
	}, nil
}

type document struct {
	path    string
	content string
}

// loadDocuments walks the base dir collecting markdown and HTML documents.
func (r *Retriever) loadDocuments() ([]document, error) {
	var docs []document

	err := filepath.WalkDir(r.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".html" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read knowledge file %s: %w", path, err)
		}
		content := string(data)
		if ext == ".html" {
			content = htmlToText(content)
		}
		rel, relErr := filepath.Rel(r.baseDir, path)
		if relErr != nil {
			rel = path
		}
		docs = append(docs, document{path: rel, content: content})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return docs, nil
}

var headingRe = regexp.MustCompile(`^#{1,3}\s+(.+)`)

// splitSections breaks a document into per-heading chunks.
func splitSections(source, content string) []Chunk {
	var sections []Chunk
	current := "Introduction"
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			sections = append(sections, Chunk{Source: source, Section: current, Content: text})
		}
		body = body[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = m[1]
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// extractKeywords pulls meaningful terms from the intent details and areas.
func extractKeywords(details string, affectedAreas []string) []string {
	var keywords []string
	seen := make(map[string]bool)

	add := func(w string) {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) <= 3 || stopWords[w] || seen[w] {
			return
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	for _, w := range strings.Fields(details) {
		add(strings.Trim(w, ".,!?;:\"'()"))
	}
	for _, area := range affectedAreas {
		for _, w := range strings.FieldsFunc(area, func(r rune) bool {
			return r == ' ' || r == '-' || r == '/'
		}) {
			add(w)
		}
	}
	return keywords
}

// truncateOnRune cuts s to at most n bytes without splitting a rune.
func truncateOnRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// scoreRelevance counts keyword occurrences in the content.
func scoreRelevance(content string, keywords []string) float64 {
	lower := strings.ToLower(content)
	score := 0.0
	for _, kw := range keywords {
		score += float64(strings.Count(lower, kw))
	}
	return score
}
