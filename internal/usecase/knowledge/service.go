// Package knowledge serves retrieval over a hot-swappable knowledge document.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/domain"
	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
)

// Service owns the current knowledge document. Readers never block writers:
// each search runs against one immutable snapshot.
type Service struct {
	source Source
	engine *domkb.Engine
	logger *zap.Logger

	doc     atomic.Pointer[domkb.Document]
	modTime atomic.Int64 // unix nanos of the last loaded source version

	mu sync.Mutex // serializes Load, reload and Replace
}

// New creates a Service with an empty document. Call Load to read the source.
func New(source Source, engine *domkb.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{source: source, engine: engine, logger: logger}
	s.install(domkb.Empty())
	return s
}

// Load reads and parses the source. On failure the service keeps answering
// with an empty document and the error is returned for logging.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("Knowledge base unavailable, serving empty document", zap.Error(err))
		s.install(domkb.Empty())
		return err
	}
	s.install(doc)
	s.logger.Info("Knowledge base loaded", zap.Int("topics", doc.Len()))
	return nil
}

// Search returns up to the configured number of snippets for query.
func (s *Service) Search(query string) []string {
	results := s.engine.Search(query, s.Snapshot())
	if len(results) > 0 {
		metrics.KnowledgeHitsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.KnowledgeHitsTotal.WithLabelValues("miss").Inc()
	}
	return results
}

// Snapshot returns the document currently served.
func (s *Service) Snapshot() domkb.Document {
	return *s.doc.Load()
}

// TopicCount returns the number of topics being served.
func (s *Service) TopicCount() int { return s.Snapshot().Len() }

// Raw returns the document currently served as JSON, preserving order.
func (s *Service) Raw(_ context.Context) ([]byte, error) {
	doc := s.Snapshot()
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode knowledge: %w", err)
	}
	return data, nil
}

// Replace validates data, persists it and swaps it in. Malformed input
// leaves both the source and the served document untouched.
func (s *Service) Replace(ctx context.Context, data []byte) (domkb.Document, error) {
	doc, err := domkb.Parse(data, s.source.Format())
	if err != nil {
		return domkb.Document{}, fmt.Errorf("%w: %v", domain.ErrInvalidKnowledge, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.source.Write(ctx, data); err != nil {
		return domkb.Document{}, fmt.Errorf("persist knowledge: %w", err)
	}
	s.install(doc)
	s.rememberModTime(ctx)
	s.logger.Info("Knowledge base replaced", zap.Int("topics", doc.Len()))
	return doc, nil
}

// Watch reloads the source every interval until ctx is done.
// Unchanged sources are skipped; failed reloads keep the last good document.
func (s *Service) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reload(ctx, false); err != nil && ctx.Err() == nil {
				s.logger.Warn("Knowledge base reload failed", zap.Error(err))
			}
		}
	}
}

// Reload re-reads the source. Without force, an unchanged modification time
// is a no-op. It reports whether a new document was installed.
func (s *Service) Reload(ctx context.Context, force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !force {
		mt, err := s.source.ModTime(ctx)
		if err != nil {
			return false, fmt.Errorf("stat knowledge: %w", err)
		}
		if mt.UnixNano() == s.modTime.Load() {
			return false, nil
		}
	}

	doc, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	s.install(doc)
	s.logger.Info("Knowledge base reloaded", zap.Int("topics", doc.Len()))
	return true, nil
}

// read stats before reading, so a write racing the read shows up as a newer
// version on the next tick. The version is remembered even when parsing fails:
// an unchanged broken file is not re-read and re-logged on every tick.
func (s *Service) read(ctx context.Context) (domkb.Document, error) {
	mt, statErr := s.source.ModTime(ctx)
	data, err := s.source.Read(ctx)
	if err != nil {
		return domkb.Document{}, err
	}
	if statErr == nil {
		s.modTime.Store(mt.UnixNano())
	}
	doc, err := domkb.Parse(data, s.source.Format())
	if err != nil {
		return domkb.Document{}, err
	}
	for _, w := range doc.Validate() {
		s.logger.Warn("Knowledge base warning", zap.String("warning", w))
	}
	return doc, nil
}

func (s *Service) rememberModTime(ctx context.Context) {
	mt, err := s.source.ModTime(ctx)
	if err != nil {
		if !errors.Is(err, domkb.ErrMissingDocument) {
			s.logger.Debug("Knowledge base stat failed", zap.Error(err))
		}
		return
	}
	s.modTime.Store(mt.UnixNano())
}

func (s *Service) install(doc domkb.Document) {
	s.doc.Store(&doc)
	metrics.KnowledgeTopics.Set(float64(doc.Len()))
}
