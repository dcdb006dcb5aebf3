// Package nlp composes chunking, embedding, vector search, prompt assembly
// and generation into the retrieval-and-answer pipeline.
package nlp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/AbdulmalikDS/Farqad/internal/extractor"
	"github.com/AbdulmalikDS/Farqad/internal/llm"
	"github.com/AbdulmalikDS/Farqad/internal/models"
	"github.com/AbdulmalikDS/Farqad/internal/templates"
	"github.com/AbdulmalikDS/Farqad/internal/vectordb"
)

// Fixed user-facing messages for the pipeline's degraded branches.
const (
	CannotAnswerMessage = "I couldn't find relevant information in the uploaded documents to answer that question. I can only answer based on the content you provide."

	generationErrorMessage = "I'm sorry, I encountered an error while processing your request. Please try again later."
	emptyAnswerMessage     = "I processed your request but encountered an issue generating a response. Please try rephrasing your question."
	directErrorMessage     = "I encountered an error while processing your request. Please try again with a simpler question or check back later."
	directEmptyMessage     = "I'm sorry, I couldn't generate a response for your query. Please try asking a different question."

	fallbackRAGSystemPrompt     = "You are a helpful assistant that analyzes documents and answers questions based on their content."
	fallbackGeneralSystemPrompt = "You are a helpful financial assistant that provides clear and concise answers."
)

// ScoredText is one search hit exposed to callers.
type ScoredText struct {
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

// AnswerResult is the full outcome of a grounded answer.
type AnswerResult struct {
	Answer  string           `json:"answer"`
	Prompt  string           `json:"prompt"`
	History []llm.Message    `json:"history"`
	Value   *float64         `json:"extracted_value,omitempty"`
	Table   []map[string]any `json:"extracted_table,omitempty"`
}

// Config bounds the controller's per-request behavior.
type Config struct {
	SearchLimit    int
	ScoreThreshold float64
	BatchSize      int
	EmbedWorkers   int
}

// Controller orchestrates the pipeline. It is stateless across requests and
// safe for concurrent use.
type Controller struct {
	vdb       vectordb.Provider
	generator llm.Generator
	embedder  llm.Embedder
	templates *templates.Parser
	cfg       Config
}

func NewController(vdb vectordb.Provider, generator llm.Generator, embedder llm.Embedder,
	parser *templates.Parser, cfg Config) *Controller {

	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 4
	}
	return &Controller{
		vdb:       vdb,
		generator: generator,
		embedder:  embedder,
		templates: parser,
		cfg:       cfg,
	}
}

// CollectionName derives a project's vector collection name.
func CollectionName(projectID string) string {
	return "collection_" + strings.TrimSpace(projectID)
}

// Index embeds the chunks and writes them to the project's collection,
// creating (or resetting) the collection sized to the embedder's dimension.
// Indexing failures are terminal errors to the caller; this is the one
// pipeline entry that does not degrade silently.
func (c *Controller) Index(ctx context.Context, projectID string, chunks []models.Chunk, reset bool) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index for project %q", projectID)
	}
	collection := CollectionName(projectID)
	log.Info().Str("collection", collection).Int("chunks", len(chunks)).Bool("reset", reset).Msg("indexing chunks")

	texts := make([]string, len(chunks))
	metadata := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
		meta := make(map[string]any, len(chunk.Metadata)+1)
		for k, v := range chunk.Metadata {
			meta[k] = v
		}
		// The index and the chunk store are linked only through payload
		// metadata, so the asset reference must travel here.
		if chunk.AssetID != 0 {
			meta["asset_id"] = strconv.FormatInt(chunk.AssetID, 10)
		}
		metadata[i] = meta
	}

	vectors, err := c.embedChunks(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding chunks for project %q: %w", projectID, err)
	}

	if _, err := c.vdb.CreateCollection(ctx, collection, c.embedder.EmbeddingSize(), reset); err != nil {
		return fmt.Errorf("preparing collection %q: %w", collection, err)
	}

	recordIDs := make([]string, len(chunks))
	for i := range recordIDs {
		recordIDs[i] = uuid.NewString()
	}

	if err := c.vdb.InsertMany(ctx, collection, texts, vectors, metadata, recordIDs, c.cfg.BatchSize); err != nil {
		return fmt.Errorf("inserting into collection %q: %w", collection, err)
	}
	return nil
}

// embedChunks embeds texts with a bounded worker pool, preserving input
// order in the result.
func (c *Controller) embedChunks(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	size := c.embedder.EmbeddingSize()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.EmbedWorkers)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vector, err := c.embedder.EmbedText(gctx, text, llm.DocumentTypeDocument)
			if err != nil {
				return err
			}
			if len(vector) != size {
				return fmt.Errorf("chunk %d embedded to dimension %d, expected %d", i, len(vector), size)
			}
			vectors[i] = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Search embeds the query and runs a similarity search over the project's
// collection. Backend errors and empty results both yield an empty list:
// search never surfaces raw backend failures to callers.
func (c *Controller) Search(ctx context.Context, projectID, query string, limit int,
	assetID string, scoreThreshold *float32) []ScoredText {

	if limit <= 0 {
		limit = c.cfg.SearchLimit
	}
	if scoreThreshold == nil && c.cfg.ScoreThreshold > 0 {
		t := float32(c.cfg.ScoreThreshold)
		scoreThreshold = &t
	}

	vector, err := c.embedder.EmbedText(ctx, query, llm.DocumentTypeQuery)
	if err != nil {
		log.Error().Err(err).Str("project", projectID).Msg("query embedding failed")
		return []ScoredText{}
	}

	var filter *vectordb.Filter
	if assetID != "" {
		filter = vectordb.FilterByAsset(assetID)
	}

	docs, err := c.vdb.SearchByVector(ctx, CollectionName(projectID), vector, limit, filter, scoreThreshold)
	if err != nil {
		log.Error().Err(err).Str("project", projectID).Msg("vector search failed")
		return []ScoredText{}
	}

	results := make([]ScoredText, 0, len(docs))
	for _, doc := range docs {
		results = append(results, ScoredText{Score: doc.Score, Text: doc.Text})
	}
	return results
}

// Answer retrieves relevant passages and asks the generator for an answer
// grounded in them. With no relevant passages it returns the fixed
// cannot-answer message without invoking the generator at all.
func (c *Controller) Answer(ctx context.Context, projectID, question string,
	assetID string, history []models.ConversationMessage) AnswerResult {

	lang := c.templates.DetectLanguage(question)
	log.Debug().Str("project", projectID).Str("lang", lang).Msg("answering question")

	retrieved := c.Search(ctx, projectID, question, c.cfg.SearchLimit, assetID, nil)
	if len(retrieved) == 0 {
		log.Warn().Str("project", projectID).Msg("no relevant documents retrieved")
		return AnswerResult{
			Answer:  CannotAnswerMessage,
			Prompt:  "",
			History: []llm.Message{},
		}
	}

	systemPrompt, err := c.templates.Get("rag", "system_prompt", lang, nil)
	if err != nil {
		log.Error().Err(err).Msg("loading rag system prompt")
		systemPrompt = fallbackRAGSystemPrompt
	}

	fragments := make([]string, 0, len(retrieved))
	for i, doc := range retrieved {
		fragment, err := c.templates.Get("rag", "document_prompt", lang, map[string]string{
			"doc_num":    strconv.Itoa(i + 1),
			"chunk_text": doc.Text,
		})
		if err != nil {
			fragment = fmt.Sprintf("## Document No: %d\n### Content: %s", i+1, doc.Text)
		}
		fragments = append(fragments, fragment)
	}

	footer, err := c.templates.Get("rag", "footer_prompt", lang, map[string]string{
		"query": question,
	})
	if err != nil {
		footer = "Based only on the above documents, please generate an answer for the user.\n## Question:\n" + question
	}

	chatHistory := append(
		[]llm.Message{c.generator.ConstructPrompt(systemPrompt, llm.RoleSystem)},
		c.replayHistory(history)...,
	)
	fullPrompt := strings.Join(fragments, "\n") + "\n\n" + footer

	answer, err := c.generator.GenerateText(ctx, fullPrompt, chatHistory)
	if err != nil {
		log.Error().Err(err).Str("project", projectID).Msg("generation failed")
		answer = generationErrorMessage
	} else if strings.TrimSpace(answer) == "" {
		log.Error().Str("project", projectID).Msg("generator returned empty answer")
		answer = emptyAnswerMessage
	}

	extracted := extractor.Extract(answer)
	return AnswerResult{
		Answer:  extracted.Answer,
		Prompt:  fullPrompt,
		History: chatHistory,
		Value:   extracted.Value,
		Table:   extracted.Table,
	}
}

// DirectAnswer answers from conversation alone, without retrieval.
func (c *Controller) DirectAnswer(ctx context.Context, question string, history []models.ConversationMessage) string {
	lang := c.templates.DetectLanguage(question)

	systemPrompt, err := c.templates.Get("general", "system_prompt", lang, nil)
	if err != nil {
		log.Error().Err(err).Msg("loading general system prompt")
		systemPrompt = fallbackGeneralSystemPrompt
	}

	chatHistory := append(
		[]llm.Message{c.generator.ConstructPrompt(systemPrompt, llm.RoleSystem)},
		c.replayHistory(history)...,
	)

	answer, err := c.generator.GenerateText(ctx, question, chatHistory)
	if err != nil {
		log.Error().Err(err).Msg("direct generation failed")
		return directErrorMessage
	}
	if strings.TrimSpace(answer) == "" {
		return directEmptyMessage
	}
	return answer
}

// replayHistory maps external conversation turns onto provider messages,
// treating any unknown role as a user turn.
func (c *Controller) replayHistory(history []models.ConversationMessage) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		role := llm.RoleUser
		if msg.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, c.generator.ConstructPrompt(msg.Content, role))
	}
	return msgs
}
