package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rag-assistant-be/internal/constant"
	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/events"
	pktNats "rag-assistant-be/pkg/nats"
	"rag-assistant-be/pkg/rag/assemble"
	"rag-assistant-be/pkg/rag/history"
	"rag-assistant-be/pkg/rag/intent"
	"rag-assistant-be/pkg/rag/response"
	"rag-assistant-be/pkg/rag/search"
	"rag-assistant-be/pkg/store"
)

// IConversationService drives one session's conversation turns.
type IConversationService interface {
	SendChat(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendChatStreaming(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (*dto.SendChatStreamingResponse, error)
	GetChatHistory(ctx context.Context, sessionKey string) ([]*dto.GetChatHistoryResponse, error)
	GetChatHistoryPage(ctx context.Context, sessionKey string, limit, offset int) (*dto.GetChatHistoryPageResponse, error)
	ClearChat(ctx context.Context, sessionKey string) error
	DiscardSession(ctx context.Context, sessionKey string) error
}

type conversationService struct {
	uowFactory       unitofwork.RepositoryFactory
	sessionRepo      *memory.SessionRepository
	engine           *search.Engine
	generator        *response.Generator
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher // optional, nil when NATS is not configured
	logger           logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	engine *search.Engine,
	generator *response.Generator,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:       uowFactory,
		sessionRepo:      sessionRepo,
		engine:           engine,
		generator:        generator,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// SendChat runs one batch turn. Failures never escape: they are absorbed
// into the reporter channel and the caller gets back whatever part of the
// turn did happen (at minimum the accepted user turn).
func (s *conversationService) SendChat(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (resp *dto.SendChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.reportFailure(ctx, sessionKey, fmt.Sprintf("%sUnexpectedException: %v", constant.UIErrorPrefix, r))
			resp = &dto.SendChatResponse{SessionKey: sessionKey}
			err = nil
		}
	}()

	resp, turnErr := s.runBatchTurn(ctx, sessionKey, request)
	s.absorb(ctx, sessionKey, turnErr)
	return resp, nil
}

func (s *conversationService) runBatchTurn(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	setup, err := s.prepareTurn(ctx, sessionKey, request)
	if err != nil {
		return &dto.SendChatResponse{SessionKey: sessionKey}, err
	}
	if setup.skip {
		return &dto.SendChatResponse{SessionKey: sessionKey}, nil
	}

	resp := &dto.SendChatResponse{
		SessionKey: sessionKey,
		Sent:       &dto.SendChatResponseTurn{Speaker: string(store.SpeakerUser), Text: setup.query},
		Sources:    setup.result.Sources,
	}

	answer, err := s.generator.Answer(ctx, setup.query, setup.result.Context, setup.conversationText)
	if err != nil {
		s.persistTranscript(ctx, setup.session)
		return resp, err
	}

	if strings.TrimSpace(answer) != "" {
		answer += response.SourceSuffix(setup.result.Sources)
		setup.session.Append(store.ChatTurn{Speaker: store.SpeakerBot, Text: answer})
		resp.Reply = &dto.SendChatResponseTurn{Speaker: string(store.SpeakerBot), Text: answer}
	}

	if err := s.persistTranscript(ctx, setup.session); err != nil {
		return resp, err
	}
	setup.session.ClearInput()
	s.sessionRepo.Save(setup.session)

	s.publishEvent(ctx, dto.TurnEventMessage{
		Type:       events.TypeTurnCompleted,
		SessionKey: sessionKey,
		Sources:    setup.result.Sources,
		Answer:     answer,
	})
	return resp, nil
}

// SendChatStreaming accepts the turn and returns immediately; the answer
// arrives over the websocket hub. The Bot turn is appended and persisted by
// the stream completion callback.
func (s *conversationService) SendChatStreaming(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (resp *dto.SendChatStreamingResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.reportFailure(ctx, sessionKey, fmt.Sprintf("%sUnexpectedException: %v", constant.UIErrorPrefix, r))
			resp = &dto.SendChatStreamingResponse{SessionKey: sessionKey}
			err = nil
		}
	}()

	setup, turnErr := s.prepareTurn(ctx, sessionKey, request)
	if turnErr != nil {
		s.absorb(ctx, sessionKey, turnErr)
		return &dto.SendChatStreamingResponse{SessionKey: sessionKey}, nil
	}
	if setup.skip {
		return &dto.SendChatStreamingResponse{SessionKey: sessionKey}, nil
	}

	// The user turn is durable before the stream starts; the stream outlives
	// this request.
	if err := s.persistTranscript(ctx, setup.session); err != nil {
		s.absorb(ctx, sessionKey, err)
		return &dto.SendChatStreamingResponse{SessionKey: sessionKey}, nil
	}
	setup.session.ClearInput()
	s.sessionRepo.Save(setup.session)

	streamCtx := context.WithoutCancel(ctx)
	s.generator.AnswerStream(streamCtx, sessionKey, setup.query, setup.result.Context, setup.conversationText, setup.result.Sources, func(answer string) {
		if strings.TrimSpace(answer) != "" {
			setup.session.Append(store.ChatTurn{Speaker: store.SpeakerBot, Text: answer})
		}
		if err := s.persistTranscript(streamCtx, setup.session); err != nil {
			s.logger.Error("Conversation", "Failed to persist streamed answer", map[string]interface{}{
				"session_key": sessionKey,
				"error":       err.Error(),
			})
			return
		}
		s.sessionRepo.Save(setup.session)
		s.publishEvent(streamCtx, dto.TurnEventMessage{
			Type:       events.TypeTurnCompleted,
			SessionKey: sessionKey,
			Sources:    setup.result.Sources,
			Answer:     answer,
		})
	})

	return &dto.SendChatStreamingResponse{SessionKey: sessionKey, Streaming: true}, nil
}

func (s *conversationService) GetChatHistory(ctx context.Context, sessionKey string) ([]*dto.GetChatHistoryResponse, error) {
	session, err := s.hydrateSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	turns := session.Turns()
	result := make([]*dto.GetChatHistoryResponse, 0, len(turns))
	for _, turn := range turns {
		result = append(result, &dto.GetChatHistoryResponse{
			Speaker: string(turn.Speaker),
			Text:    turn.Text,
		})
	}
	return result, nil
}

// GetChatHistoryPage reads one window of the durable transcript straight
// from storage, bypassing the in-memory session. Clients with long
// conversations page instead of pulling the whole history.
func (s *conversationService) GetChatHistoryPage(ctx context.Context, sessionKey string, limit, offset int) (*dto.GetChatHistoryPageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatTranscriptRepository()

	total, err := repo.Count(ctx, specification.BySessionKey{SessionKey: sessionKey})
	if err != nil {
		return nil, err
	}

	turns, err := repo.FindWithSpecifications(ctx,
		specification.BySessionKey{SessionKey: sessionKey},
		specification.OrderBy{Field: "position"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	page := &dto.GetChatHistoryPageResponse{
		Total: total,
		Turns: make([]*dto.GetChatHistoryResponse, 0, len(turns)),
	}
	for _, t := range turns {
		page.Turns = append(page.Turns, &dto.GetChatHistoryResponse{
			Speaker: t.Speaker,
			Text:    t.Text,
		})
	}
	return page, nil
}

// ClearChat leaves the transcript empty regardless of what it held before.
func (s *conversationService) ClearChat(ctx context.Context, sessionKey string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatTranscriptRepository().DeleteBySessionKey(ctx, sessionKey); err != nil {
		return err
	}

	session := s.sessionRepo.GetOrCreate(sessionKey)
	session.Reset()
	session.ClearInput()
	session.MarkHydrated()
	s.sessionRepo.Save(session)
	return nil
}

// DiscardSession tears a session down completely: the durable transcript,
// the personal index chunks and the in-memory state. Transcript and chunks
// go in one transaction so the session never half-disappears.
func (s *conversationService) DiscardSession(ctx context.Context, sessionKey string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	if err := uow.ChatTranscriptRepository().DeleteBySessionKey(ctx, sessionKey); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.DocumentIndexRepository().DeletePersonalBySessionKey(ctx, sessionKey); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.sessionRepo.Delete(sessionKey)
	s.logger.Info("Conversation", "Session discarded", map[string]interface{}{
		"session_key": sessionKey,
	})
	return nil
}

type turnSetup struct {
	session          *store.Session
	query            string
	result           assemble.QueryResult
	conversationText string
	skip             bool
}

// prepareTurn runs the shared front half of a turn: accept the input,
// append the user turn, retrieve and assemble the grounding context, render
// the conversation. Retrieval failures persist the user turn before
// returning so the user's message is never lost.
func (s *conversationService) prepareTurn(ctx context.Context, sessionKey string, request *dto.SendChatRequest) (*turnSetup, error) {
	query := strings.TrimSpace(request.Query)
	if query == "" {
		return &turnSetup{skip: true}, nil
	}

	session, err := s.hydrateSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	in := intent.Parse(request.Intent)
	session.SetInput(store.PendingInput{Query: query, Intent: string(in)})
	session.Append(store.ChatTurn{Speaker: store.SpeakerUser, Text: query})

	sourceHits, err := s.engine.Retrieve(ctx, sessionKey, query, in)
	if err != nil {
		s.persistTranscript(ctx, session)
		s.sessionRepo.Save(session)
		return nil, err
	}

	return &turnSetup{
		session:          session,
		query:            query,
		result:           assemble.Assemble(sourceHits),
		conversationText: history.Render(session.Turns()),
	}, nil
}

func (s *conversationService) hydrateSession(ctx context.Context, sessionKey string) (*store.Session, error) {
	session := s.sessionRepo.GetOrCreate(sessionKey)
	if session.Hydrated() {
		return session, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	turns, err := uow.ChatTranscriptRepository().FindBySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("hydrate session %s: %w", sessionKey, err)
	}
	for _, t := range turns {
		session.Append(store.ChatTurn{Speaker: store.Speaker(t.Speaker), Text: t.Text})
	}
	session.MarkHydrated()
	s.sessionRepo.Save(session)
	return session, nil
}

func (s *conversationService) persistTranscript(ctx context.Context, session *store.Session) error {
	snapshot := session.Turns()
	turns := make([]*entity.ChatTurn, 0, len(snapshot))
	for _, t := range snapshot {
		turns = append(turns, &entity.ChatTurn{
			SessionKey: session.ID,
			Speaker:    string(t.Speaker),
			Text:       t.Text,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatTranscriptRepository().ReplaceForSession(ctx, session.ID, turns)
}

// absorb is the turn error boundary. Retrieval sentinels map to their fixed
// behavior; everything else surfaces as one user-facing signal and is
// otherwise swallowed.
func (s *conversationService) absorb(ctx context.Context, sessionKey string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, search.ErrEmbeddingUnavailable):
		// Silent: the turn simply ends with the user turn kept.
		s.logger.Warn("Conversation", "Turn abandoned, embedding unavailable", map[string]interface{}{
			"session_key": sessionKey,
		})
	case errors.Is(err, search.ErrNoSystemResults):
		s.reportFailure(ctx, sessionKey, constant.SystemIndexEmptyMessage)
	default:
		s.logger.Error("Conversation", "Turn failed", map[string]interface{}{
			"session_key": sessionKey,
			"error":       err.Error(),
		})
		s.reportFailure(ctx, sessionKey, fmt.Sprintf("%sUnexpectedException: %s", constant.UIErrorPrefix, err.Error()))
	}
}

func (s *conversationService) reportFailure(ctx context.Context, sessionKey, message string) {
	s.publishEvent(ctx, dto.TurnEventMessage{
		Type:       events.TypeTurnFailed,
		SessionKey: sessionKey,
		Message:    message,
	})
}

func (s *conversationService) publishEvent(ctx context.Context, msg dto.TurnEventMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Error("Conversation", "Failed to publish turn event", map[string]interface{}{
			"type":  msg.Type,
			"error": err.Error(),
		})
	}

	if s.eventPublisher != nil {
		var evt events.Event
		if msg.Type == events.TypeTurnCompleted {
			evt = events.NewTurnCompleted(msg.SessionKey, msg.Sources)
		} else {
			evt = events.NewTurnFailed(msg.SessionKey, msg.Message)
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Conversation", "Failed to mirror event to NATS", map[string]interface{}{
				"type":  msg.Type,
				"error": err.Error(),
			})
		}
	}
}
