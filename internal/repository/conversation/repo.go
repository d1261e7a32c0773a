// Package conversation stores chat exchanges as hashes with newest-first id lists.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	"github.com/kailas-cloud/helpdesk/internal/domain/chat"
	domconv "github.com/kailas-cloud/helpdesk/internal/domain/conversation"
)

// Retention caps for the id lists.
const (
	MaxRecent         = 1000
	MaxSessionHistory = 50
)

// store is the consumer interface for conversations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	LPush(ctx context.Context, key string, values ...string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	SAdd(ctx context.Context, key string, members ...string) error
	SCard(ctx context.Context, key string) (int64, error)
}

// Repo implements usecase/chat.ConversationRepository and usecase/analytics.ConversationReader.
type Repo struct {
	store  store
	prefix string
}

// New creates a conversation repository. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Save stores the conversation, indexes it and bumps the counters.
func (r *Repo) Save(ctx context.Context, c *domconv.Conversation) error {
	key := r.convKey(c.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(c)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	if err := r.pushCapped(ctx, r.recentKey(), c.ID(), MaxRecent); err != nil {
		return err
	}
	if err := r.pushCapped(ctx, r.sessionKey(c.SessionID()), c.ID(), MaxSessionHistory); err != nil {
		return err
	}

	if _, err := r.store.IncrBy(ctx, r.totalKey(), 1); err != nil {
		return fmt.Errorf("incr total: %w", err)
	}
	if _, err := r.store.IncrBy(ctx, r.sentimentKey(c.Sentiment()), 1); err != nil {
		return fmt.Errorf("incr sentiment: %w", err)
	}
	if err := r.store.SAdd(ctx, r.sessionsKey(), c.SessionID()); err != nil {
		return fmt.Errorf("sadd sessions: %w", err)
	}
	return nil
}

// Get returns a conversation by ID.
func (r *Repo) Get(ctx context.Context, id string) (domconv.Conversation, error) {
	key := r.convKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domconv.Conversation{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domconv.Conversation{}, domain.ErrNotFound
	}
	return parseHashFields(m), nil
}

// Exists reports whether a conversation is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	key := r.convKey(id)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

// Recent returns up to n conversations, newest first.
func (r *Repo) Recent(ctx context.Context, n int) ([]domconv.Conversation, error) {
	return r.list(ctx, r.recentKey(), n)
}

// History returns the last n conversations of a session, oldest first.
func (r *Repo) History(ctx context.Context, sessionID string, n int) ([]domconv.Conversation, error) {
	convs, err := r.list(ctx, r.sessionKey(sessionID), n)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(convs)-1; i < j; i, j = i+1, j-1 {
		convs[i], convs[j] = convs[j], convs[i]
	}
	return convs, nil
}

// Stats returns totals, unique sessions and the sentiment distribution.
func (r *Repo) Stats(ctx context.Context) (domconv.Stats, error) {
	total, err := r.counter(ctx, r.totalKey())
	if err != nil {
		return domconv.Stats{}, err
	}
	sessions, err := r.store.SCard(ctx, r.sessionsKey())
	if err != nil {
		return domconv.Stats{}, fmt.Errorf("scard sessions: %w", err)
	}

	dist := make(map[chat.Sentiment]int64, len(chat.Sentiments))
	for _, s := range chat.Sentiments {
		n, err := r.counter(ctx, r.sentimentKey(s))
		if err != nil {
			return domconv.Stats{}, err
		}
		dist[s] = n
	}

	return domconv.Stats{Total: total, UniqueSessions: sessions, Sentiment: dist}, nil
}

func (r *Repo) list(ctx context.Context, listKey string, n int) ([]domconv.Conversation, error) {
	if n <= 0 {
		return []domconv.Conversation{}, nil
	}
	ids, err := r.store.LRange(ctx, listKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", listKey, err)
	}
	if len(ids) == 0 {
		return []domconv.Conversation{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.convKey(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	out := make([]domconv.Conversation, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue // evicted
		}
		out = append(out, parseHashFields(m))
	}
	return out, nil
}

func (r *Repo) pushCapped(ctx context.Context, key, id string, capacity int64) error {
	if err := r.store.LPush(ctx, key, id); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	if err := r.store.LTrim(ctx, key, 0, capacity-1); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	return nil
}

func (r *Repo) counter(ctx context.Context, key string) (int64, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func (r *Repo) convKey(id string) string {
	return fmt.Sprintf("%sconv:%s", r.prefix, id)
}

func (r *Repo) recentKey() string {
	return r.prefix + "convs"
}

func (r *Repo) sessionKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:convs", r.prefix, sessionID)
}

func (r *Repo) sessionsKey() string {
	return r.prefix + "stats:sessions"
}

func (r *Repo) totalKey() string {
	return r.prefix + "stats:conversations"
}

func (r *Repo) sentimentKey(s chat.Sentiment) string {
	return fmt.Sprintf("%sstats:sentiment:%s", r.prefix, s)
}
