package importer

import (
	"context"
	"fmt"

	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sirupsen/logrus"
)

// Remote is what an import needs from the linkding client.
type Remote interface {
	LookupByURL(ctx context.Context, rawURL string) (*model.LookupResult, error)
	CreateBookmark(ctx context.Context, d model.BookmarkDraft) (*model.Bookmark, error)
}

// Summary counts what an import did.
type Summary struct {
	Created []model.Bookmark
	Skipped int // already on the server
	Failed  []Failure
}

// Failure is an entry the server did not accept.
type Failure struct {
	URL string
	Err error
}

// ProgressFunc is called after each entry is handled.
type ProgressFunc func(done, total int)

// Import creates every entry that is not already bookmarked. Entries are
// sent one at a time; a failure is recorded and the import moves on. Only
// cancellation of ctx stops it early.
func Import(ctx context.Context, remote Remote, entries []Entry, log *logrus.Logger, onProgress ProgressFunc) (Summary, error) {
	log = logger.OrDiscard(log)
	var sum Summary

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		draft := e.Draft
		draft.URL = model.NormalizeURL(draft.URL)

		existing, err := remote.LookupByURL(ctx, draft.URL)
		switch {
		case err != nil:
			sum.Failed = append(sum.Failed, Failure{URL: draft.URL, Err: fmt.Errorf("lookup: %w", err)})
		case existing.Exists():
			sum.Skipped++
			log.WithField("url", draft.URL).Debug("import: already bookmarked")
		default:
			created, err := remote.CreateBookmark(ctx, draft)
			if err != nil {
				sum.Failed = append(sum.Failed, Failure{URL: draft.URL, Err: err})
				log.WithError(err).WithField("url", draft.URL).Warn("import: create failed")
				break
			}
			sum.Created = append(sum.Created, *created)
		}

		if onProgress != nil {
			onProgress(i+1, len(entries))
		}
	}

	log.WithFields(logrus.Fields{
		"created": len(sum.Created),
		"skipped": sum.Skipped,
		"failed":  len(sum.Failed),
	}).Info("import: done")
	return sum, nil
}
