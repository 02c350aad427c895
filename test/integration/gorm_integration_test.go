package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"perry-be/internal/constant"
	"perry-be/internal/entity"
	"perry-be/internal/repository/unitofwork"
	"perry-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.ChatMessageRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Chat Session Repository", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatSession count: %d", count)
	})

	t.Run("Check Chat Message Repository", func(t *testing.T) {
		count, err := uow.ChatMessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatMessage count: %d", count)
	})

	t.Run("Check Transactional Session With Message", func(t *testing.T) {
		userId := uuid.New()
		user := &entity.User{
			Id:          userId,
			Email:       "test-integration-" + uuid.New().String() + "@example.com",
			DisplayName: "Integration Test User",
			Status:      entity.UserStatusActive,
		}

		err := uow.UserRepository().Create(context.Background(), user)
		assert.NoError(t, err)

		// Transaction Test: message insert must see the session created
		// in the same transaction, since chats carries an FK to
		// chat_sessions.
		ctx := context.Background()
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:        sessionId,
			UserId:    userId,
			Title:     constant.DefaultSessionTitle,
			CreatedAt: time.Now(),
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		msg := &entity.ChatMessage{
			Id:            uuid.New(),
			UserId:        userId,
			ChatSessionId: sessionId,
			Message:       "integration hello",
			IsBot:         false,
			CreatedAt:     time.Now(),
		}
		err = uow.ChatMessageRepository().Create(ctx, msg)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		t.Log("Successfully created ChatSession with ChatMessage in Transaction")
	})
}
