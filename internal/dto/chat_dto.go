package dto

type SendChatRequest struct {
	Query  string `json:"query" validate:"required"`
	Intent string `json:"intent,omitempty"` // none | user_docs | system_docs | hybrid
}

type SendChatResponseTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type SendChatResponse struct {
	SessionKey string                `json:"session_key"`
	Sent       *SendChatResponseTurn `json:"sent"`
	Reply      *SendChatResponseTurn `json:"reply,omitempty"`
	Sources    []string              `json:"sources,omitempty"`
}

type SendChatStreamingResponse struct {
	SessionKey string `json:"session_key"`
	Streaming  bool   `json:"streaming"`
}

type GetChatHistoryResponse struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// GetChatHistoryPageResponse is one window of the durable transcript plus
// the total turn count, for clients that page instead of loading it whole.
type GetChatHistoryPageResponse struct {
	Total int64                     `json:"total"`
	Turns []*GetChatHistoryResponse `json:"turns"`
}

// TurnEventMessage is the pub/sub wire shape of turn lifecycle events.
type TurnEventMessage struct {
	Type       string   `json:"type"` // events.TypeTurnCompleted | events.TypeTurnFailed
	SessionKey string   `json:"session_key"`
	Message    string   `json:"message,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Answer     string   `json:"answer,omitempty"`
}
