package service

import (
	"context"
	"encoding/json"
	"strings"

	"perry-be/internal/constant"
	"perry-be/internal/dto"
	"perry-be/internal/pkg/logger"
	"perry-be/internal/repository/specification"
	"perry-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService derives session titles in the background so the send
// pipeline never waits on it.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishSessionTitleMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.log.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: payload.ChatSessionId})
	if err != nil {
		cs.log.Error("consumer", "failed to get session", map[string]interface{}{
			"session_id": payload.ChatSessionId,
			"error":      err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}
	if session == nil {
		cs.log.Warn("consumer", "session not found", map[string]interface{}{
			"session_id": payload.ChatSessionId,
		})
		msg.Ack() // Session deleted? Ack.
		return
	}

	// A racing exchange may have named the session already.
	if session.Title != constant.DefaultSessionTitle {
		msg.Ack()
		return
	}

	session.Title = DeriveSessionTitle(payload.Message)

	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		cs.log.Error("consumer", "failed to update session title", map[string]interface{}{
			"session_id": payload.ChatSessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.log.Info("consumer", "session titled", map[string]interface{}{
		"session_id": payload.ChatSessionId,
		"title":      session.Title,
	})
	msg.Ack()
}

// DeriveSessionTitle turns the first user message into a short session
// title. Whitespace runs collapse and long messages are cut at a rune
// boundary.
func DeriveSessionTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if title == "" {
		return constant.DefaultSessionTitle
	}

	runes := []rune(title)
	if len(runes) > constant.SessionTitleMaxLen {
		title = strings.TrimSpace(string(runes[:constant.SessionTitleMaxLen])) + "..."
	}
	return title
}
