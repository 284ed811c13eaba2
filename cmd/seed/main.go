package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/implementation"
	"rag-assistant-be/pkg/database"
	"rag-assistant-be/pkg/embedding"
)

// Seeds the shared system index from a plain-text file. Passages are
// separated by blank lines; each one is embedded and stored as a system
// chunk. The running server only searches the index, so this is how system
// docs get in.
func main() {
	file := flag.String("file", "seed/system_docs.txt", "passage file, blank line separated")
	source := flag.String("source", "seed", "value recorded in chunk metadata")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var provider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("Error: Failed to read passage file:", err)
	}

	passages := splitPassages(string(raw))
	if len(passages) == 0 {
		log.Fatalf("Error: No passages found in %s", *file)
	}
	log.Printf("Seeding %d system passages from %s...", len(passages), *file)

	repo := implementation.NewDocumentIndexRepository(db)
	ctx := context.Background()

	seeded := 0
	for i, passage := range passages {
		resp, err := provider.Generate(passage, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("Warn: Embedding failed for passage %d: %v. Skipping...", i+1, err)
			continue
		}

		chunk := &entity.DocumentChunk{
			Scope:     entity.ChunkScopeSystem,
			ChunkText: passage,
			Metadata: map[string]interface{}{
				"chunk_text": passage,
				"source":     *source,
			},
		}
		if err := repo.Create(ctx, chunk, resp.Embedding.Values); err != nil {
			log.Fatal("Error: Failed to store chunk:", err)
		}
		seeded++
	}

	log.Printf("Seed complete: %d of %d passages stored.", seeded, len(passages))
}

func splitPassages(text string) []string {
	var passages []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := strings.TrimSpace(block); p != "" {
			passages = append(passages, p)
		}
	}
	return passages
}
