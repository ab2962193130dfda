package relocator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/qbittorrent"
	"github.com/starcalypse/torrentdeck/transmission"
)

// Dialer opens an authenticated session against a backend
type Dialer func(ctx context.Context, desc downloader.Descriptor, logger zerolog.Logger) (downloader.Client, error)

// Connect selects the backend implementation for desc.Kind and opens a
// session. Unknown kinds fail before any network I/O.
func Connect(ctx context.Context, desc downloader.Descriptor, logger zerolog.Logger, opts ...downloader.Option) (downloader.Client, error) {
	switch desc.Kind {
	case downloader.KindQBittorrent:
		return qbittorrent.NewClient(ctx, desc, logger, opts...)
	case downloader.KindTransmission:
		return transmission.NewClient(ctx, desc, logger, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", downloader.ErrUnsupportedBackend, desc.Kind)
	}
}

// DefaultDialer returns a Dialer backed by Connect with the given options
func DefaultDialer(opts ...downloader.Option) Dialer {
	return func(ctx context.Context, desc downloader.Descriptor, logger zerolog.Logger) (downloader.Client, error) {
		return Connect(ctx, desc, logger, opts...)
	}
}
