// Package publish drives the four-stage VK wall photo protocol for a comic.
package publish

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/maauso/comicpost/internal/comic"
	"github.com/maauso/comicpost/internal/storage"
	"github.com/maauso/comicpost/internal/vk"
)

// Publisher posts a stored comic image to a community wall.
type Publisher struct {
	client vk.Client
	store  storage.Storage
	creds  vk.Credentials
	logger *slog.Logger
}

// NewPublisher creates a new Publisher for the community in creds.
func NewPublisher(client vk.Client, store storage.Storage, creds vk.Credentials, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		store:  store,
		creds:  creds,
		logger: logger,
	}
}

// Publish runs upload target, transfer, register and post in order. Each
// stage only runs after the previous one succeeded and receives its output
// unchanged. Any failure is a *vk.PlatformError naming the stage.
func (p *Publisher) Publish(ctx context.Context, c comic.Comic, artifact comic.Artifact) (vk.PublishedPost, error) {
	target, err := p.client.GetWallUploadServer(ctx, p.creds)
	if err != nil {
		return vk.PublishedPost{}, err
	}
	p.logStage(vk.StageUploadTarget, c)

	receipt, err := p.transfer(ctx, target, artifact)
	if err != nil {
		return vk.PublishedPost{}, err
	}
	p.logStage(vk.StageTransfer, c, slog.Int("server", receipt.Server))

	asset, err := p.client.SaveWallPhoto(ctx, p.creds, receipt)
	if err != nil {
		return vk.PublishedPost{}, err
	}
	p.logStage(vk.StageRegister, c, slog.String("attachment", asset.Attachment()))

	post, err := p.client.PostToWall(ctx, p.creds, asset, c.AltText)
	if err != nil {
		return vk.PublishedPost{}, err
	}
	p.logStage(vk.StagePost, c, slog.Int("post_id", post.PostID))

	return post, nil
}

func (p *Publisher) transfer(ctx context.Context, target vk.UploadTarget, artifact comic.Artifact) (vk.UploadReceipt, error) {
	f, err := p.store.Open(ctx, artifact.Path)
	if err != nil {
		return vk.UploadReceipt{}, &vk.PlatformError{
			Stage:  vk.StageTransfer,
			Detail: "local image unreadable",
			Err:    err,
		}
	}
	defer func() { _ = f.Close() }()

	return p.client.UploadPhoto(ctx, target, filepath.Base(artifact.Path), f)
}

func (p *Publisher) logStage(stage vk.Stage, c comic.Comic, attrs ...any) {
	args := append([]any{
		slog.String("stage", string(stage)),
		slog.Int("comic_id", c.ID),
	}, attrs...)
	p.logger.Debug("publish stage completed", args...)
}
