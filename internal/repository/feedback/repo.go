// Package feedback persists user feedback on bot replies.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	domfb "github.com/kailas-cloud/helpdesk/internal/domain/feedback"
)

// MaxRecent caps the feedback id list.
const MaxRecent = 1000

const (
	fieldID             = "id"
	fieldConversationID = "conversation_id"
	fieldSessionID      = "session_id"
	fieldRating         = "rating"
	fieldHelpful        = "helpful"
	fieldText           = "feedback_text"
	fieldCreatedAt      = "created_at"
)

type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	LPush(ctx context.Context, key string, values ...string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo stores feedback hashes plus counters.
type Repo struct {
	store  store
	prefix string
}

// New creates a feedback repository. An empty prefix uses domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Save stores feedback and updates counters.
func (r *Repo) Save(ctx context.Context, f *domfb.Feedback) error {
	key := r.key(f.ID())
	if err := r.store.HSet(ctx, key, toHash(f)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if err := r.store.LPush(ctx, r.listKey(), f.ID()); err != nil {
		return fmt.Errorf("lpush feedback: %w", err)
	}
	if err := r.store.LTrim(ctx, r.listKey(), 0, MaxRecent-1); err != nil {
		return fmt.Errorf("ltrim feedback: %w", err)
	}

	incr := map[string]int64{r.statKey("total"): 1}
	if f.Rating() > 0 {
		incr[r.statKey("rated")] = 1
		incr[r.statKey("rating_sum")] = int64(f.Rating())
	}
	if h := f.Helpful(); h != nil {
		if *h {
			incr[r.statKey("helpful")] = 1
		} else {
			incr[r.statKey("not_helpful")] = 1
		}
	}
	for k, v := range incr {
		if _, err := r.store.IncrBy(ctx, k, v); err != nil {
			return fmt.Errorf("incr %s: %w", k, err)
		}
	}
	return nil
}

// Recent returns up to n feedback entries, newest first.
func (r *Repo) Recent(ctx context.Context, n int) ([]domfb.Feedback, error) {
	if n <= 0 {
		return []domfb.Feedback{}, nil
	}
	ids, err := r.store.LRange(ctx, r.listKey(), 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("lrange feedback: %w", err)
	}
	if len(ids) == 0 {
		return []domfb.Feedback{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}
	out := make([]domfb.Feedback, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		out = append(out, fromHash(m))
	}
	return out, nil
}

// Stats reads the feedback counters.
func (r *Repo) Stats(ctx context.Context) (domfb.Stats, error) {
	var st domfb.Stats
	targets := []struct {
		name string
		dst  *int64
	}{
		{"total", &st.Total},
		{"rated", &st.Rated},
		{"rating_sum", &st.RatingSum},
		{"helpful", &st.Helpful},
		{"not_helpful", &st.NotHelpful},
	}
	for _, t := range targets {
		key := r.statKey(t.name)
		data, err := r.store.Get(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return domfb.Stats{}, fmt.Errorf("get %s: %w", key, err)
		}
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return domfb.Stats{}, fmt.Errorf("parse %s: %w", key, err)
		}
		*t.dst = n
	}
	return st, nil
}

func toHash(f *domfb.Feedback) map[string]string {
	m := map[string]string{
		fieldID:             f.ID(),
		fieldConversationID: f.ConversationID(),
		fieldSessionID:      f.SessionID(),
		fieldText:           f.Text(),
		fieldCreatedAt:      f.CreatedAt().Format(time.RFC3339Nano),
	}
	if f.Rating() > 0 {
		m[fieldRating] = strconv.Itoa(f.Rating())
	}
	if h := f.Helpful(); h != nil {
		m[fieldHelpful] = strconv.FormatBool(*h)
	}
	return m
}

func fromHash(m map[string]string) domfb.Feedback {
	rating, _ := strconv.Atoi(m[fieldRating])
	var helpful *bool
	if v, err := strconv.ParseBool(m[fieldHelpful]); err == nil {
		helpful = &v
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, m[fieldCreatedAt])
	return domfb.Reconstruct(
		m[fieldID], m[fieldConversationID], m[fieldSessionID],
		rating, helpful, m[fieldText], createdAt,
	)
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sfeedback:%s", r.prefix, id)
}

func (r *Repo) listKey() string {
	return r.prefix + "feedbacks"
}

func (r *Repo) statKey(name string) string {
	return fmt.Sprintf("%sstats:feedback:%s", r.prefix, name)
}
