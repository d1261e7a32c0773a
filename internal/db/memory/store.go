// Package memory implements db.Store in process memory. It backs local runs
// without Redis and use-case tests; data does not survive a restart.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/helpdesk/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type kind uint8

const (
	kindString kind = iota + 1
	kindHash
	kindList
	kindSet
)

type entry struct {
	kind    kind
	str     []byte
	hash    map[string]string
	list    []string // head first
	set     map[string]struct{}
	expires time.Time // zero = no expiry
}

// sweepEvery is the number of writes between full scans for expired keys.
const sweepEvery = 256

// Store is a mutex-guarded map of typed entries. Expired keys are dropped on
// read and by a sweep every sweepEvery writes, so keys nobody reads again
// (rate limit windows, cache entries) do not accumulate.
type Store struct {
	mu     sync.Mutex
	data   map[string]*entry
	now    func() time.Time
	writes int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: make(map[string]*entry), now: time.Now}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close drops all data.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*entry)
}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// lookup returns a live entry, evicting it if expired. Caller holds mu.
func (s *Store) lookup(key string) *entry {
	e, ok := s.data[key]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.data, key)
		return nil
	}
	return e
}

// written counts a write and sweeps expired keys when due. Caller holds mu.
func (s *Store) written() {
	s.writes++
	if s.writes%sweepEvery != 0 {
		return
	}
	now := s.now()
	for key, e := range s.data {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(s.data, key)
		}
	}
}

// typed returns the live entry for key, creating it when missing.
// A key holding another kind yields db.ErrWrongType. Caller holds mu.
func (s *Store) typed(op, key string, k kind, create bool) (*entry, error) {
	e := s.lookup(key)
	if e == nil {
		if !create {
			return nil, nil
		}
		e = &entry{kind: k}
		switch k {
		case kindHash:
			e.hash = make(map[string]string)
		case kindSet:
			e.set = make(map[string]struct{})
		}
		s.data[key] = e
		s.written()
		return e, nil
	}
	if e.kind != k {
		return nil, &db.Error{Op: op, Err: db.ErrWrongType}
	}
	return e, nil
}

// --- KV ---

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpGet, key, kindString, false)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.str...), nil
}

// Set stores a value, clearing any expiry.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &entry{kind: kindString, str: append([]byte(nil), value...)}
	s.written()
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = &entry{
		kind:    kindString,
		str:     append([]byte(nil), value...),
		expires: s.now().Add(ttl),
	}
	s.written()
	return nil
}

// IncrBy atomically increments a key by the given amount and returns the new value.
func (s *Store) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpIncrBy, key, kindString, true)
	if err != nil {
		return 0, err
	}
	var cur int64
	if len(e.str) > 0 {
		cur, err = strconv.ParseInt(string(e.str), 10, 64)
		if err != nil {
			return 0, &db.Error{Op: db.OpIncrBy, Err: err}
		}
	}
	cur += val
	e.str = []byte(strconv.FormatInt(cur, 10))
	return cur, nil
}

// Expire sets TTL on a key. When nx=true, sets TTL only if the key has no expiry yet.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return nil
	}
	if nx && !e.expires.IsZero() {
		return nil
	}
	e.expires = s.now().Add(ttl)
	return nil
}

// TTL returns the remaining time to live of a key; -1 when it has no expiry.
func (s *Store) TTL(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(key)
	if e == nil {
		return 0, db.ErrKeyNotFound
	}
	if e.expires.IsZero() {
		return -1, nil
	}
	return e.expires.Sub(s.now()), nil
}

// Del deletes a key.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key) != nil, nil
}

// --- Hash ---

// HSet sets hash fields.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpHSet, key, kindHash, true)
	if err != nil {
		return err
	}
	for k, v := range fields {
		e.hash[k] = v
	}
	return nil
}

// HGetAll returns all fields of a hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hgetall(key)
}

// HGetAllMulti fetches all fields for multiple hashes.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := s.hgetall(key)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (s *Store) hgetall(key string) (map[string]string, error) {
	e, err := s.typed(db.OpHGetAll, key, kindHash, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	if e != nil {
		for k, v := range e.hash {
			out[k] = v
		}
	}
	return out, nil
}

// --- List ---

// LPush prepends values to a list, so the last value ends up at the head.
func (s *Store) LPush(_ context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpLPush, key, kindList, true)
	if err != nil {
		return err
	}
	head := make([]string, 0, len(values)+len(e.list))
	for i := len(values) - 1; i >= 0; i-- {
		head = append(head, values[i])
	}
	e.list = append(head, e.list...)
	return nil
}

// LTrim keeps only elements start..stop.
func (s *Store) LTrim(_ context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpLTrim, key, kindList, false)
	if err != nil || e == nil {
		return err
	}
	lo, hi, ok := listRange(int64(len(e.list)), start, stop)
	if !ok {
		delete(s.data, key)
		return nil
	}
	e.list = append([]string(nil), e.list[lo:hi]...)
	return nil
}

// LRange returns elements start..stop inclusive. A missing key yields an empty slice.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpLRange, key, kindList, false)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []string{}, nil
	}
	lo, hi, ok := listRange(int64(len(e.list)), start, stop)
	if !ok {
		return []string{}, nil
	}
	return append([]string(nil), e.list[lo:hi]...), nil
}

// LLen returns the list length.
func (s *Store) LLen(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpLLen, key, kindList, false)
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.list)), nil
}

// listRange converts Redis-style inclusive indexes (negative = from tail)
// into a half-open slice range.
func listRange(n, start, stop int64) (int64, int64, bool) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop + 1, true
}

// --- Set ---

// SAdd adds members to a set.
func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpSAdd, key, kindSet, true)
	if err != nil {
		return err
	}
	for _, m := range members {
		e.set[m] = struct{}{}
	}
	return nil
}

// SCard returns the set cardinality.
func (s *Store) SCard(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.typed(db.OpSCard, key, kindSet, false)
	if err != nil || e == nil {
		return 0, err
	}
	return int64(len(e.set)), nil
}
