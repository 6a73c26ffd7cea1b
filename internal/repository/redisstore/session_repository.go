package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-contact-review-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "review:session:"

// sessionRepository keeps sessions in Redis so they survive process restarts
// and expire server-side. Each session uses two keys: the contact list as a
// JSON string and the dispatch log as a hash with "<index>:<target>" fields.
type sessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

type storedSession struct {
	Contacts  []domain.Contact `json:"contacts"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewSessionRepository creates a Redis-backed session store. A zero TTL
// stores sessions without expiry.
func NewSessionRepository(client *redis.Client, ttl time.Duration) domain.SessionRepository {
	return &sessionRepository{client: client, ttl: ttl}
}

func sessionKey(id string) string { return keyPrefix + id }
func logKey(id string) string     { return keyPrefix + id + ":log" }

func (r *sessionRepository) Create(ctx context.Context, contacts []domain.Contact) (string, error) {
	id := uuid.NewString()

	payload, err := json.Marshal(storedSession{Contacts: contacts, CreatedAt: time.Now()})
	if err != nil {
		return "", fmt.Errorf("redisstore: marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey(id), payload, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("redisstore: create session: %w", err)
	}
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*domain.ReviewSession, error) {
	stored, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fields, err := r.client.HGetAll(ctx, logKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: load dispatch log: %w", err)
	}

	log := make(map[int]map[domain.Target]bool, len(fields))
	for field, value := range fields {
		idxStr, target, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			continue
		}
		if log[idx] == nil {
			log[idx] = make(map[domain.Target]bool)
		}
		log[idx][domain.Target(target)] = value == "1"
	}

	return &domain.ReviewSession{
		SessionID:   sessionID,
		Contacts:    stored.Contacts,
		DispatchLog: log,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

func (r *sessionRepository) GetContact(ctx context.Context, sessionID string, index int) (*domain.Contact, error) {
	stored, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(stored.Contacts) {
		return nil, domain.ErrContactIndex
	}
	c := stored.Contacts[index]
	return &c, nil
}

func (r *sessionRepository) RecordOutcome(ctx context.Context, sessionID string, index int, target domain.Target, ok bool) error {
	stored, err := r.load(ctx, sessionID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(stored.Contacts) {
		return domain.ErrContactIndex
	}

	value := "0"
	if ok {
		value = "1"
	}
	field := fmt.Sprintf("%d:%s", index, target)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, logKey(sessionID), field, value)
	if r.ttl > 0 {
		// Keep the log on the same clock as the session itself
		pipe.Expire(ctx, logKey(sessionID), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: record outcome: %w", err)
	}
	return nil
}

func (r *sessionRepository) Len(ctx context.Context) (int, error) {
	var count int
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("redisstore: scan sessions: %w", err)
		}
		for _, key := range keys {
			if !strings.HasSuffix(key, ":log") {
				count++
			}
		}
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// Close is a no-op: the shared client is owned by pkg/redis.
func (r *sessionRepository) Close() error { return nil }

func (r *sessionRepository) load(ctx context.Context, sessionID string) (*storedSession, error) {
	payload, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: load session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("redisstore: unmarshal session: %w", err)
	}
	return &stored, nil
}
