// Package comic selects a random xkcd comic and stores its image locally.
package comic

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Acquisition errors. Each is terminal for the run.
var (
	// ErrSourceUnavailable is returned when the archive cannot be reached or fails.
	ErrSourceUnavailable = errors.New("comic: source unavailable")
	// ErrComicNotFound is returned when the chosen comic has no usable metadata or image.
	ErrComicNotFound = errors.New("comic: comic not found")
	// ErrStorage is returned when the image cannot be written locally.
	ErrStorage = errors.New("comic: storage error")
)

// ImageExtension is appended to every stored image name.
const ImageExtension = ".png"

// Comic is the content chosen for publication.
type Comic struct {
	ID        int
	Title     string
	SafeTitle string
	AltText   string
	ImageURL  string
}

// Artifact is the local file holding a comic image. It is owned by the run
// that created it and must be removed before that run ends.
type Artifact struct {
	Path string
}

// FileName derives the stored image name from the comic's safe title.
// Characters that could form a path or confuse a shell are replaced with
// underscores; a title that normalizes to nothing falls back to the id.
func (c Comic) FileName() string {
	title := c.SafeTitle
	if title == "" {
		title = c.Title
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case strings.ContainsRune(" _.()'-", r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.TrimLeft(strings.TrimSpace(b.String()), ".")
	if strings.Trim(name, "_ ") == "" {
		name = fmt.Sprintf("comic-%d", c.ID)
	}
	return name + ImageExtension
}
