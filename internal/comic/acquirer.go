package comic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/maauso/comicpost/internal/storage"
	"github.com/maauso/comicpost/internal/xkcd"
)

// Acquirer picks a random comic and writes its image to storage.
type Acquirer struct {
	source xkcd.Client
	store  storage.Storage
	logger *slog.Logger
	// intN returns a uniform value in [0, n).
	intN func(n int) int
}

// AcquirerOption is a function that configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithRand replaces the random source used to pick a comic number.
func WithRand(intN func(n int) int) AcquirerOption {
	return func(a *Acquirer) {
		a.intN = intN
	}
}

// NewAcquirer creates a new Acquirer.
func NewAcquirer(source xkcd.Client, store storage.Storage, logger *slog.Logger, opts ...AcquirerOption) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Acquirer{
		source: source,
		store:  store,
		logger: logger,
		intN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire looks up the newest comic number, draws a comic uniformly from
// [1, newest], fetches it and saves its image. On error no file is left
// behind.
func (a *Acquirer) Acquire(ctx context.Context) (Comic, Artifact, error) {
	latest, err := a.source.Latest(ctx)
	if err != nil {
		return Comic{}, Artifact{}, classify(err)
	}

	id := a.intN(latest.Num) + 1
	a.logger.Info("comic selected",
		slog.Int("comic_id", id),
		slog.Int("max_id", latest.Num),
	)

	info, err := a.source.Comic(ctx, id)
	if err != nil {
		return Comic{}, Artifact{}, classify(err)
	}

	c := Comic{
		ID:        info.Num,
		Title:     info.Title,
		SafeTitle: info.SafeTitle,
		AltText:   info.Alt,
		ImageURL:  info.Img,
	}
	if c.ID == 0 {
		c.ID = id
	}

	body, err := a.source.Download(ctx, c.ImageURL)
	if err != nil {
		return Comic{}, Artifact{}, classify(err)
	}
	defer func() { _ = body.Close() }()

	path, err := a.store.Save(ctx, c.FileName(), body)
	if err != nil {
		// The body streams straight into the file, so a broken download
		// surfaces here too.
		if errors.Is(err, xkcd.ErrUnavailable) {
			return Comic{}, Artifact{}, fmt.Errorf("%w: download comic %d image: %w", ErrSourceUnavailable, c.ID, err)
		}
		return Comic{}, Artifact{}, fmt.Errorf("%w: save comic %d image: %w", ErrStorage, c.ID, err)
	}

	a.logger.Info("comic image stored",
		slog.Int("comic_id", c.ID),
		slog.String("title", c.SafeTitle),
		slog.String("path", path),
	)

	return c, Artifact{Path: path}, nil
}

// classify maps archive client errors onto the acquisition taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, xkcd.ErrNotFound), errors.Is(err, xkcd.ErrInvalidID):
		return fmt.Errorf("%w: %w", ErrComicNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
}
