package service

import (
	"context"
	"encoding/json"

	"rag-assistant-be/internal/dto"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/events"
	"rag-assistant-be/pkg/rag/response"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService forwards turn lifecycle events to the websocket hub: error
// signals become user-facing messages, completions become done notices.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  response.ChunkSink
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery response.ChunkSink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.TurnEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal turn event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads never become valid on retry
		return
	}

	switch payload.Type {
	case events.TypeTurnFailed:
		cs.delivery.SendError(payload.SessionKey, payload.Message)
	case events.TypeTurnCompleted:
		cs.delivery.SendDone(payload.SessionKey, payload.Answer, payload.Sources)
	default:
		cs.logger.Warn("Consumer", "Unknown turn event type", map[string]interface{}{"type": payload.Type})
	}
	msg.Ack()
}
