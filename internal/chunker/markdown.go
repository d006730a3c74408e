package chunker

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gtext "github.com/yuin/goldmark/text"

	"github.com/statico/quickrag/pkg/types"
)

// MarkdownChunker segments a document at heading boundaries before applying
// the token budget, so units do not straddle sections. Sections that exceed
// the budget are delegated to the recursive splitter, which keeps the
// overlap and forward-progress contract intact within each section.
type MarkdownChunker struct {
	opts      Options
	md        goldmark.Markdown
	recursive *RecursiveChunker
}

// NewMarkdown creates a markdown-aware chunker.
func NewMarkdown(opts Options) (*MarkdownChunker, error) {
	recursive, err := NewRecursive(opts)
	if err != nil {
		return nil, err
	}
	return &MarkdownChunker{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
		recursive: recursive,
	}, nil
}

// Chunk implements the Chunker interface.
func (c *MarkdownChunker) Chunk(text, sourcePath string) ([]types.TextUnit, error) {
	if blank(text) {
		return nil, nil
	}

	source := []byte(text)
	cuts := c.headingOffsets(source)

	li := newLineIndex(text)
	var units []types.TextUnit

	prev := 0
	for _, cut := range append(cuts, len(text)) {
		if cut <= prev {
			continue
		}
		sectionUnits, err := c.recursive.Chunk(text[prev:cut], sourcePath)
		if err != nil {
			return nil, err
		}
		for _, u := range sectionUnits {
			u.StartOffset += prev
			u.EndOffset += prev
			u.StartLine = li.lineAt(u.StartOffset)
			last := u.EndOffset - 1
			if last < u.StartOffset {
				last = u.StartOffset
			}
			u.EndLine = li.lineAt(last)
			units = append(units, u)
		}
		prev = cut
	}

	return units, nil
}

// headingOffsets returns the byte offsets of top-level heading lines in
// document order.
func (c *MarkdownChunker) headingOffsets(source []byte) []int {
	doc := c.md.Parser().Parse(gtext.NewReader(source))

	var cuts []int
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		// The segment starts after the heading marker; back up to the
		// start of the line so the marker stays with its section.
		off := h.Lines().At(0).Start
		for off > 0 && source[off-1] != '\n' {
			off--
		}
		if off > 0 {
			cuts = append(cuts, off)
		}
	}
	return cuts
}
