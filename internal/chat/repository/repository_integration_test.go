//go:build integration

package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/database"
	errprocess "marketplace_chat_service/pkg/err"
	"marketplace_chat_service/pkg/logger"
	testtool "marketplace_chat_service/pkg/test_tool"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	mongoDB     *database.MongoDB
	redisClient *redis.Client
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()

	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MongoDB container: %v", err)
	}

	redisContainer, redisHost, redisPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start Redis container: %v", err)
	}

	mongoDB, err = database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: time.Second,
	}, "test_chat_db")
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort)})

	code := m.Run()

	_ = redisClient.Close()
	_ = mongoDB.Close(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = redisContainer.Terminate(ctx)
	os.Exit(code)
}

func newRepos(t *testing.T) (ConversationRepository, MessageRepository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, mongoDB.Database.Collection(ConversationCollection).Drop(ctx))
	require.NoError(t, mongoDB.Database.Collection(MessageCollection).Drop(ctx))

	convs := NewMongoConversationRepository(mongoDB.Database)
	msgs := NewMongoMessageRepository(mongoDB.Database)
	require.NoError(t, convs.EnsureIndexes(ctx))
	require.NoError(t, msgs.EnsureIndexes(ctx))
	return convs, msgs
}

func TestFindOrCreate_ConcurrentSingleRow(t *testing.T) {
	convs, _ := newRepos(t)
	ctx := context.Background()

	const workers = 16
	ids := make([]string, workers)
	created := make([]bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, isNew, err := convs.FindOrCreate(ctx, "listing-1", "buyer-1", "seller-1")
			if !assert.NoError(t, err) {
				return
			}
			ids[i], created[i] = conv.ID, isNew
		}(i)
	}
	wg.Wait()

	newCount := 0
	for i := range ids {
		assert.Equal(t, ids[0], ids[i])
		if created[i] {
			newCount++
		}
	}
	assert.Equal(t, 1, newCount)

	n, err := mongoDB.Database.Collection(ConversationCollection).CountDocuments(ctx, map[string]string{"listing_id": "listing-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	again, isNew, err := convs.FindOrCreate(ctx, "listing-1", "buyer-1", "seller-1")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, ids[0], again.ID)
}

func TestGet_NonParticipantLooksAbsent(t *testing.T) {
	convs, _ := newRepos(t)
	ctx := context.Background()

	conv, _, err := convs.FindOrCreate(ctx, "listing-1", "buyer-1", "seller-1")
	require.NoError(t, err)

	_, err = convs.Get(ctx, conv.ID, "stranger")
	assert.True(t, errprocess.IsNotFound(err))
	_, err = convs.Get(ctx, "missing", "buyer-1")
	assert.True(t, errprocess.IsNotFound(err))

	got, err := convs.Get(ctx, conv.ID, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, got.ID)
}

func TestMessages_OrderUnreadAndMarkRead(t *testing.T) {
	convs, msgs := newRepos(t)
	ctx := context.Background()

	conv, _, err := convs.FindOrCreate(ctx, "listing-1", "buyer-1", "seller-1")
	require.NoError(t, err)

	_, err = msgs.Append(ctx, conv.ID, "buyer-1", "   ")
	assert.True(t, errprocess.IsValidation(err))

	var appended []string
	for i := 0; i < 5; i++ {
		m, err := msgs.Append(ctx, conv.ID, "buyer-1", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
		appended = append(appended, m.ID)
	}
	reply, err := msgs.Append(ctx, conv.ID, "seller-1", "reply")
	require.NoError(t, err)
	require.NoError(t, convs.SetLatestMessage(ctx, conv.ID, reply.ID))

	list, err := msgs.ListForConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, list, 6)
	for i, id := range appended {
		assert.Equal(t, id, list[i].ID)
	}

	n, err := msgs.CountUnread(ctx, conv.ID, "seller-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	changed, err := msgs.MarkRead(ctx, conv.ID, "seller-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, changed)
	changed, err = msgs.MarkRead(ctx, conv.ID, "seller-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, changed)

	counts, err := msgs.CountUnreadByConversation(ctx, "buyer-1", []string{conv.ID, "other"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[conv.ID])
	assert.EqualValues(t, 0, counts["other"])

	listed, err := convs.ListForParticipant(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, reply.ID, listed[0].LatestMessageID)
}

func TestSetLatestMessage_Missing(t *testing.T) {
	convs, _ := newRepos(t)
	err := convs.SetLatestMessage(context.Background(), "missing", "m1")
	assert.True(t, errprocess.IsNotFound(err))
}

func TestRedisPubSub_RelaysToSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewRedisPubSub(redisClient)
	sink := &recordSink{}
	require.NoError(t, bus.Subscribe(ctx, sink))

	require.NoError(t, bus.ToRoom(ctx, "c1", domain.WSResponse{Action: domain.ReceiveMessage}))
	require.NoError(t, bus.ToAll(ctx, domain.WSResponse{Action: domain.ChatUpdated}))

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.rooms["c1"]) == 1 && len(sink.all) == 1
	}, 5*time.Second, 20*time.Millisecond)
}
