// Package bootstrap wires the posting pipeline from configuration.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/maauso/comicpost/internal/comic"
	"github.com/maauso/comicpost/internal/config"
	"github.com/maauso/comicpost/internal/httplog"
	"github.com/maauso/comicpost/internal/job"
	"github.com/maauso/comicpost/internal/publish"
	"github.com/maauso/comicpost/internal/storage"
	"github.com/maauso/comicpost/internal/vk"
	"github.com/maauso/comicpost/internal/xkcd"
)

// Dependencies holds all initialized dependencies for a run.
type Dependencies struct {
	PostService *job.PostComicService
}

// Option overrides a default collaborator, mainly for tests.
type Option func(*options)

type options struct {
	xkcdOpts []xkcd.ClientOption
	vkOpts   []vk.ClientOption
}

// WithXKCDOptions passes options to the archive client.
func WithXKCDOptions(opts ...xkcd.ClientOption) Option {
	return func(o *options) {
		o.xkcdOpts = append(o.xkcdOpts, opts...)
	}
}

// WithVKOptions passes options to the VK client.
func WithVKOptions(opts ...vk.ClientOption) Option {
	return func(o *options) {
		o.vkOpts = append(o.vkOpts, opts...)
	}
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Dependencies, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.ImageFolder)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("image_folder", store.Dir()),
	)

	creds := vk.Credentials{
		AccessToken: cfg.AccessToken,
		GroupID:     cfg.GroupID,
		APIVersion:  cfg.APIVersion,
	}

	// Both clients log their HTTP exchanges at debug level
	xkcdOpts := append([]xkcd.ClientOption{xkcd.WithHTTPClient(httplog.NewClient(30*time.Second, logger))}, o.xkcdOpts...)
	vkOpts := append([]vk.ClientOption{vk.WithHTTPClient(httplog.NewClient(60*time.Second, logger))}, o.vkOpts...)

	acquirer := comic.NewAcquirer(xkcd.NewClient(xkcdOpts...), store, logger)
	publisher := publish.NewPublisher(vk.NewClient(vkOpts...), store, creds, logger)

	return &Dependencies{
		PostService: job.NewPostComicService(acquirer, publisher, store, logger),
	}, nil
}
