package chunker

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AbdulmalikDS/Farqad/internal/models"
)

// Placeholder texts emitted when a document yields no usable content.
const (
	PlaceholderEmptyContent    = "[This document appears to contain no extractable text content]"
	PlaceholderProcessingError = "[This document could not be processed properly]"
)

// Segment is one loaded portion of a document (a page, a sheet, a file)
// before splitting.
type Segment struct {
	Text     string
	Metadata map[string]any
}

// Chunker splits document segments into overlapping passages. Split never
// returns an empty slice: pathological input degrades through a ladder of
// fallbacks instead of failing, so ingestion cannot abort on a bad document.
type Chunker struct {
	chunkSize int
	overlap   int
}

func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split produces ordered chunks from the given segments. Metadata is copied
// from the owning segment and augmented, never replaced. Order indexes are
// 1-based.
func (c *Chunker) Split(segments []Segment) []models.Chunk {
	texts := make([]string, 0, len(segments))
	metadatas := make([]map[string]any, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		texts = append(texts, seg.Text)
		metadatas = append(metadatas, copyMetadata(seg.Metadata))
	}

	if len(texts) == 0 {
		log.Warn().Msg("chunker: no usable text in any segment, emitting placeholder chunk")
		return []models.Chunk{{
			Text:       PlaceholderEmptyContent,
			Metadata:   map[string]any{"empty_content": true},
			OrderIndex: 1,
		}}
	}

	chunks, err := c.split(texts, metadatas, c.chunkSize)
	if err != nil {
		log.Error().Err(err).Msg("chunker: splitting failed, falling back to one chunk per segment")
		return c.perSegment(texts, metadatas, true)
	}

	if len(chunks) == 0 {
		log.Warn().Int("chunk_size", c.chunkSize*2).Msg("chunker: empty split result, retrying with doubled chunk size")
		chunks, err = c.split(texts, metadatas, c.chunkSize*2)
		if err != nil {
			return c.perSegment(texts, metadatas, true)
		}
	}

	if len(chunks) == 0 {
		log.Warn().Msg("chunker: retry produced no chunks, keeping one chunk per segment")
		return c.perSegment(texts, metadatas, false)
	}

	return chunks
}

func (c *Chunker) split(texts []string, metadatas []map[string]any, chunkSize int) ([]models.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(c.overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
	)

	docs, err := textsplitter.CreateDocuments(splitter, texts, metadatas)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.Chunk, 0, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.PageContent) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       doc.PageContent,
			Metadata:   copyMetadata(doc.Metadata),
			OrderIndex: i + 1,
		})
	}
	return chunks, nil
}

// perSegment emits one chunk per surviving segment. When tagged, each chunk
// carries the fallback flag and its original segment index; an empty result
// degrades further to a single placeholder chunk.
func (c *Chunker) perSegment(texts []string, metadatas []map[string]any, tagged bool) []models.Chunk {
	chunks := make([]models.Chunk, 0, len(texts))
	for i, text := range texts {
		meta := copyMetadata(metadatas[i])
		if tagged {
			meta["fallback_chunk"] = true
			meta["original_segment"] = i
		}
		chunks = append(chunks, models.Chunk{
			Text:       text,
			Metadata:   meta,
			OrderIndex: i + 1,
		})
	}

	if len(chunks) == 0 {
		return []models.Chunk{{
			Text:       PlaceholderProcessingError,
			Metadata:   map[string]any{"processing_error": true},
			OrderIndex: 1,
		}}
	}
	return chunks
}

func copyMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
