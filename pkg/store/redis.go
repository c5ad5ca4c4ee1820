package store

import (
	"context"
	"fmt"
	"github.com/go-redis/redis/v8"
	"github.com/hirotachi/the-void/pkg/utils"
	"github.com/rs/xid"
	"strconv"
	"strings"
	"time"
)

// RedisStore keeps every message as a hash and indexes them in two sorted
// sets scored by creation time: one for all rows and one for verified rows.
type RedisStore struct {
	RedisClient *redis.Client
	now         func() time.Time
}

var _ Moderator = (*RedisStore)(nil)

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		RedisClient: redisClient,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func messageKey(id string) string {
	return utils.RedisMessageKeyPrefix + id
}

func (s *RedisStore) InsertMessage(ctx context.Context, content string) error {
	_, err := s.Insert(ctx, content)
	return err
}

// Insert stores a new unverified message and returns it with its assigned id.
func (s *RedisStore) Insert(ctx context.Context, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	message := &Message{
		ID:        xid.New().String(),
		Content:   content,
		CreatedAt: s.now(),
	}
	score := float64(message.CreatedAt.UnixMicro())
	_, err := s.RedisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HMSet(ctx, messageKey(message.ID),
			"id", message.ID,
			"content", message.Content,
			"verified", strconv.FormatBool(message.Verified),
			"created_at", message.CreatedAt.Format(time.RFC3339Nano),
		)
		pipe.ZAdd(ctx, utils.RedisMessagesSetKey, &redis.Z{Score: score, Member: message.ID})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return message, nil
}

func (s *RedisStore) CountVerified(ctx context.Context) (int, error) {
	n, err := s.RedisClient.ZCard(ctx, utils.RedisVerifiedSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count verified messages: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) FetchAtOffset(ctx context.Context, offset int) (*Message, error) {
	messages, err := s.FetchVerified(ctx, offset, 1)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// FetchVerified returns up to limit verified messages starting at offset, in
// creation order.
func (s *RedisStore) FetchVerified(ctx context.Context, offset, limit int) ([]*Message, error) {
	if offset < 0 || limit <= 0 {
		return []*Message{}, nil
	}
	ids, err := s.RedisClient.ZRange(ctx, utils.RedisVerifiedSetKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range verified messages: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *RedisStore) List(ctx context.Context) ([]*Message, error) {
	ids, err := s.RedisClient.ZRange(ctx, utils.RedisMessagesSetKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return s.load(ctx, ids)
}

func (s *RedisStore) Verify(ctx context.Context, id string, verified bool) error {
	message, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	score := float64(message.CreatedAt.UnixMicro())
	_, err = s.RedisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, messageKey(id), "verified", strconv.FormatBool(verified))
		if verified {
			pipe.ZAdd(ctx, utils.RedisVerifiedSetKey, &redis.Z{Score: score, Member: id})
		} else {
			pipe.ZRem(ctx, utils.RedisVerifiedSetKey, id)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to verify message %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, ids []string) ([]*Message, error) {
	messages := make([]*Message, 0, len(ids))
	for _, id := range ids {
		message, err := s.get(ctx, id)
		if err == ErrNotFound {
			continue // index and hash can briefly disagree
		}
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (s *RedisStore) get(ctx context.Context, id string) (*Message, error) {
	fields, err := s.RedisClient.HGetAll(ctx, messageKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	verified, _ := strconv.ParseBool(fields["verified"])
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	return &Message{
		ID:        fields["id"],
		Content:   fields["content"],
		Verified:  verified,
		CreatedAt: createdAt,
	}, nil
}
