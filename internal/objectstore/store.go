// Package objectstore checkpoints raw snapshots to an S3-compatible bucket and
// keeps a local ledger of what was uploaded, under which key, and when.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"ulascansenturk/kayak-pipeline/internal/failure"
	"ulascansenturk/kayak-pipeline/internal/metrics"

	"github.com/rs/zerolog"
)

type RestoreMode string

const (
	RestoreLatest RestoreMode = "latest"
	RestoreAll    RestoreMode = "all"
)

// Client is safe for concurrent use; the ledger serializes its own appends.
type Client struct {
	bucket  Bucket
	ledger  *Ledger
	logger  zerolog.Logger
	now     func() time.Time
	metrics *metrics.Recorder
}

func NewClient(bucket Bucket, ledger *Ledger, logger zerolog.Logger) *Client {
	return &Client{
		bucket: bucket,
		ledger: ledger,
		logger: logger.With().Str("component", "objectstore").Str("bucket", bucket.Name()).Logger(),
		now:    time.Now,
	}
}

// WithMetrics counts uploads per logical file on r.
func (c *Client) WithMetrics(r *metrics.Recorder) *Client {
	c.metrics = r
	return c
}

// WithClock replaces the clock used for remote keys and ledger timestamps.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

func (c *Client) EnsureBucketExists(ctx context.Context) error {
	exists, err := c.bucket.Exists(ctx)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket.Name(), err)
	}
	if exists {
		c.logger.Info().Msg("bucket exists")
		return nil
	}

	if err := c.bucket.Make(ctx); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket.Name(), err)
	}
	c.logger.Info().Msg("bucket created")
	return nil
}

// Upload stores localPath under a dated key. The ledger is only written once
// the bucket has confirmed the object.
func (c *Client) Upload(ctx context.Context, localPath string) (string, error) {
	logical := filepath.Base(localPath)
	now := c.now()
	key := RemoteKey(logical, now)

	if err := c.bucket.PutFile(ctx, key, localPath); err != nil {
		c.logger.Error().Err(err).Str("file", localPath).Str("key", key).Msg("upload failed")
		c.recordUpload(logical, metrics.StatusFailed)
		return "", fmt.Errorf("put %s as %s: %v: %w", localPath, key, err, failure.ErrUpload)
	}

	if err := c.ledger.Append(Entry{LogicalName: logical, RemoteKey: key, UploadedAt: now}); err != nil {
		return key, fmt.Errorf("record upload of %s: %w", key, err)
	}

	c.recordUpload(logical, metrics.StatusOK)
	c.logger.Info().Str("file", localPath).Str("key", key).Msg("snapshot uploaded")
	return key, nil
}

func (c *Client) recordUpload(logical, status string) {
	if c.metrics != nil {
		c.metrics.RecordUpload(logical, status)
	}
}

// Download fetches remoteKey into destDir, creating destDir when needed. Keys
// are plain file names; anything that would resolve outside destDir is refused.
func (c *Client) Download(ctx context.Context, remoteKey, destDir string) (string, error) {
	if !validKey(remoteKey) {
		return "", fmt.Errorf("refusing remote key %q: not a plain file name", remoteKey)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, remoteKey)
	if err := c.bucket.GetFile(ctx, remoteKey, dest); err != nil {
		return "", fmt.Errorf("get %s: %w", remoteKey, err)
	}

	c.logger.Info().Str("key", remoteKey).Str("file", dest).Msg("snapshot downloaded")
	return dest, nil
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		!strings.Contains(key, "..") &&
		!strings.ContainsAny(key, `/\`) &&
		filepath.Base(key) == key
}

func (c *Client) ResolveLatest(logicalName string) (string, error) {
	keys, err := c.ResolveAll(logicalName)
	if err != nil {
		return "", err
	}
	return keys[len(keys)-1], nil
}

// ResolveAll returns every uploaded key for logicalName, oldest first.
func (c *Client) ResolveAll(logicalName string) ([]string, error) {
	entries, err := c.ledger.Entries()
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if e.LogicalName == logicalName {
			keys = append(keys, e.RemoteKey)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no upload of %s in ledger %s: %w", logicalName, c.ledger.Path(), failure.ErrNotFound)
	}
	return keys, nil
}

func (c *Client) Entries() ([]Entry, error) {
	return c.ledger.Entries()
}

// Restore downloads the latest or every snapshot of logicalName into destDir
// and returns the local paths, oldest first.
func (c *Client) Restore(ctx context.Context, logicalName string, mode RestoreMode, destDir string) ([]string, error) {
	var keys []string
	switch mode {
	case RestoreLatest:
		key, err := c.ResolveLatest(logicalName)
		if err != nil {
			return nil, err
		}
		keys = []string{key}
	case RestoreAll:
		all, err := c.ResolveAll(logicalName)
		if err != nil {
			return nil, err
		}
		keys = all
	default:
		return nil, fmt.Errorf("unknown restore mode %q", mode)
	}

	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		path, err := c.Download(ctx, key, destDir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
