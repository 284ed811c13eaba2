package store

// RetrievalHit is the normalized shape of one retrieved passage, produced by
// adapting the per-index result records at the repository boundary. Text is
// whitespace-collapsed before it reaches the assembler.
type RetrievalHit struct {
	Text   string `json:"text"`
	Source string `json:"source"` // "User Docs" | "System Docs"
}
