package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKey returns the Redis key for a channel's message list.
func redisKey(channelID string) string {
	return "channel:" + channelID + ":messages"
}

// RedisStore persists messages in Redis using a list per channel.
type RedisStore struct {
	client  redis.Cmdable
	maxSize int64
}

// NewRedisStore creates a RedisStore that retains up to maxSize
// messages per channel.
func NewRedisStore(client redis.Cmdable, maxSize int) *RedisStore {
	return &RedisStore{
		client:  client,
		maxSize: int64(maxSize),
	}
}

func redisCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

// Append adds a message to the channel's list, trimming to maxSize.
func (s *RedisStore) Append(msg *Message) {
	ctx, cancel := redisCtx()
	defer cancel()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("redis: failed to marshal message: %v", err)
		return
	}

	key := redisKey(msg.ChannelID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxSize, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("redis: failed to append message: %v", err)
	}
}

// load reads the channel's full list along with each entry's raw value
// so mutations can locate entries by index.
func (s *RedisStore) load(ctx context.Context, channelID string) ([]string, []*Message) {
	vals, err := s.client.LRange(ctx, redisKey(channelID), 0, -1).Result()
	if err != nil {
		log.Printf("redis: failed to read messages: %v", err)
		return nil, nil
	}
	msgs := make([]*Message, len(vals))
	for i, v := range vals {
		var m Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		msgs[i] = &m
	}
	return vals, msgs
}

// rewrite replaces the entry at index with the updated record.
func (s *RedisStore) rewrite(ctx context.Context, channelID string, index int, msg *Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("redis: failed to marshal message: %v", err)
		return false
	}
	if err := s.client.LSet(ctx, redisKey(channelID), int64(index), data).Err(); err != nil {
		log.Printf("redis: failed to rewrite message: %v", err)
		return false
	}
	return true
}

// Get returns the message with the given id, or nil.
func (s *RedisStore) Get(channelID, id string) *Message {
	ctx, cancel := redisCtx()
	defer cancel()

	_, msgs := s.load(ctx, channelID)
	for _, m := range msgs {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}

// Edit replaces a message's content in place and stamps EditedAt.
func (s *RedisStore) Edit(channelID, id, content string) *Message {
	ctx, cancel := redisCtx()
	defer cancel()

	_, msgs := s.load(ctx, channelID)
	for i, m := range msgs {
		if m == nil || m.ID != id {
			continue
		}
		m.Content = content
		now := time.Now()
		m.EditedAt = &now
		if !s.rewrite(ctx, channelID, i, m) {
			return nil
		}
		return m
	}
	return nil
}

// Delete removes a message from the channel's list.
func (s *RedisStore) Delete(channelID, id string) bool {
	ctx, cancel := redisCtx()
	defer cancel()

	vals, msgs := s.load(ctx, channelID)
	for i, m := range msgs {
		if m == nil || m.ID != id {
			continue
		}
		if err := s.client.LRem(ctx, redisKey(channelID), 1, vals[i]).Err(); err != nil {
			log.Printf("redis: failed to delete message: %v", err)
			return false
		}
		return true
	}
	return false
}

// ToggleReaction flips a user's reaction on a message in place.
func (s *RedisStore) ToggleReaction(channelID, id, emoji, userID string) (string, *Message) {
	ctx, cancel := redisCtx()
	defer cancel()

	_, msgs := s.load(ctx, channelID)
	for i, m := range msgs {
		if m == nil || m.ID != id {
			continue
		}
		action := m.toggleReaction(emoji, userID)
		if !s.rewrite(ctx, channelID, i, m) {
			return "", nil
		}
		return action, m
	}
	return "", nil
}

// MarkRead records read receipts in place. Returns the number of
// messages newly marked.
func (s *RedisStore) MarkRead(channelID string, messageIDs []string, userID string) int {
	ctx, cancel := redisCtx()
	defer cancel()

	ids := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = struct{}{}
	}

	_, msgs := s.load(ctx, channelID)
	n := 0
	for i, m := range msgs {
		if m == nil {
			continue
		}
		if _, ok := ids[m.ID]; !ok {
			continue
		}
		if m.markRead(userID) && s.rewrite(ctx, channelID, i, m) {
			n++
		}
	}
	return n
}

// Recent returns the last n messages for a channel.
func (s *RedisStore) Recent(channelID string, n int) []*Message {
	ctx, cancel := redisCtx()
	defer cancel()

	vals, err := s.client.LRange(ctx, redisKey(channelID), int64(-n), -1).Result()
	if err != nil {
		log.Printf("redis: failed to read recent messages: %v", err)
		return nil
	}

	msgs := make([]*Message, 0, len(vals))
	for _, v := range vals {
		var m Message
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			continue
		}
		msgs = append(msgs, &m)
	}
	return msgs
}

// Count returns the number of stored messages for a channel.
func (s *RedisStore) Count(channelID string) int {
	ctx, cancel := redisCtx()
	defer cancel()

	n, err := s.client.LLen(ctx, redisKey(channelID)).Result()
	if err != nil {
		log.Printf("redis: failed to count messages: %v", err)
		return 0
	}
	return int(n)
}
