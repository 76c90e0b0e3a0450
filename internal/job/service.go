package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/comicpost/internal/comic"
	"github.com/maauso/comicpost/internal/vk"
)

// Acquirer selects a comic and stores its image.
type Acquirer interface {
	Acquire(ctx context.Context) (comic.Comic, comic.Artifact, error)
}

// Publisher posts a stored comic image.
type Publisher interface {
	Publish(ctx context.Context, c comic.Comic, artifact comic.Artifact) (vk.PublishedPost, error)
}

// Remover deletes a local artifact.
type Remover interface {
	Remove(ctx context.Context, path string) error
}

// PostComicService runs a single acquire, publish and cleanup pass.
// No step is retried.
type PostComicService struct {
	acquirer  Acquirer
	publisher Publisher
	remover   Remover
	logger    *slog.Logger
}

// NewPostComicService creates a new PostComicService.
func NewPostComicService(acquirer Acquirer, publisher Publisher, remover Remover, logger *slog.Logger) *PostComicService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostComicService{
		acquirer:  acquirer,
		publisher: publisher,
		remover:   remover,
		logger:    logger,
	}
}

// Run executes one invocation and returns its record. The error is the
// first failure of acquisition or publication; cleanup problems are logged
// and never returned.
//
// The workflow:
//  1. Acquire a random comic and store its image
//  2. Publish the image through the four VK stages
//  3. Remove the stored image, whatever step 2 returned
func (s *PostComicService) Run(ctx context.Context) (*Run, error) {
	run := New()
	logger := s.logger.With(slog.String("run_id", run.ID))
	logger.Info("run started")

	c, artifact, err := s.acquirer.Acquire(ctx)
	if err != nil {
		_ = run.Fail(err.Error())
		logger.Error("comic acquisition failed",
			slog.String("error", err.Error()),
		)
		return run, fmt.Errorf("acquire comic: %w", err)
	}

	run.ComicID = c.ID
	run.ArtifactPath = artifact.Path
	_ = run.TransitionTo(StatusPublishing)

	defer s.cleanup(ctx, logger, run, artifact)

	post, err := s.publisher.Publish(ctx, c, artifact)
	if err != nil {
		_ = run.Fail(err.Error())
		logger.Error("publishing failed",
			slog.Int("comic_id", c.ID),
			slog.String("error", err.Error()),
		)
		return run, fmt.Errorf("publish comic %d: %w", c.ID, err)
	}

	_ = run.Complete(post.PostID)
	logger.Info("comic published",
		slog.Int("comic_id", c.ID),
		slog.String("title", c.SafeTitle),
		slog.Int("post_id", post.PostID),
	)
	return run, nil
}

// cleanup removes the stored image exactly once. It runs on a context that
// ignores cancellation so an aborted run still deletes its file.
func (s *PostComicService) cleanup(ctx context.Context, logger *slog.Logger, run *Run, artifact comic.Artifact) {
	if err := s.remover.Remove(context.WithoutCancel(ctx), artifact.Path); err != nil {
		logger.Warn("failed to remove local image",
			slog.String("path", artifact.Path),
			slog.String("error", err.Error()),
		)
		return
	}
	run.Cleaned = true
	logger.Debug("local image removed",
		slog.String("path", artifact.Path),
	)
}
