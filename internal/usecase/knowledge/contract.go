package knowledge

import (
	"context"
	"time"

	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
)

// Source is where the knowledge document lives.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	ModTime(ctx context.Context) (time.Time, error)
	Format() domkb.Format
}
