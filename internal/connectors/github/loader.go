// Package github loads markdown and text files from a GitHub repository.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Default configuration values.
const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxFileSize skips blobs above 1 MiB; the contents API inlines
	// smaller blobs only.
	DefaultMaxFileSize = 1 << 20

	// requestsPerSecond throttles API calls well under the authenticated
	// quota of 5000/hour.
	requestsPerSecond = 1.2
)

// DefaultInclude matches the text formats worth comparing.
var DefaultInclude = []string{"**/*.md", "**/*.markdown", "**/*.txt"}

// Config holds GitHub loader configuration.
type Config struct {
	// Owner is the repository owner (required).
	Owner string

	// Repo is the repository name (required).
	Repo string

	// Ref is the branch, tag, or commit to read (default: the default branch).
	Ref string

	// Token is a personal access token or OAuth access token. Required
	// for private repositories; raises the rate limit for public ones.
	Token string

	// Include is a list of doublestar glob patterns on repository paths.
	Include []string

	// MaxFileSize skips blobs larger than this many bytes.
	MaxFileSize int
}

// Loader fetches a repository tree and loads matching blobs as documents.
// Document IDs are repository paths.
type Loader struct {
	client      *gh.Client
	limiter     *rate.Limiter
	owner       string
	repo        string
	ref         string
	include     []string
	maxFileSize int
}

// NewLoader creates a GitHub loader for one repository.
func NewLoader(ctx context.Context, cfg Config) (*Loader, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github: owner and repo are required: %w", domain.ErrInvalidConfig)
	}

	include := cfg.Include
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("github: invalid glob pattern %q: %w", pattern, domain.ErrInvalidConfig)
		}
	}

	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var client *gh.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = DefaultTimeout
		client = gh.NewClient(tc)
	} else {
		client = gh.NewClient(nil)
	}

	return &Loader{
		client:      client,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		owner:       cfg.Owner,
		repo:        cfg.Repo,
		ref:         cfg.Ref,
		include:     include,
		maxFileSize: maxSize,
	}, nil
}

// Name identifies the loader.
func (l *Loader) Name() string {
	return fmt.Sprintf("github:%s/%s", l.owner, l.repo)
}

// Load fetches the repository tree and returns all matching files.
func (l *Loader) Load(ctx context.Context) ([]domain.Document, error) {
	ref := l.ref
	if ref == "" {
		repo, err := l.getRepository(ctx)
		if err != nil {
			return nil, err
		}
		ref = repo.GetDefaultBranch()
	}

	tree, err := l.getTree(ctx, ref)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, entry := range tree.Entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.GetType() != "blob" || !l.matches(entry.GetPath()) {
			continue
		}
		if entry.GetSize() > l.maxFileSize {
			logger.Debug("Skipping %s: %d bytes exceeds limit", entry.GetPath(), entry.GetSize())
			continue
		}

		content, err := l.fetchBlob(ctx, entry.GetSHA())
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", entry.GetPath(), err)
		}

		filePath := entry.GetPath()
		docs = append(docs, domain.Document{
			ID:      filePath,
			URI:     fmt.Sprintf("github://%s/%s/blob/%s/%s", l.owner, l.repo, ref, filePath),
			Title:   strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)),
			Content: content,
			Metadata: map[string]string{
				"owner": l.owner,
				"repo":  l.repo,
				"ref":   ref,
				"sha":   entry.GetSHA(),
			},
		})
	}

	logger.Debug("Loaded %d documents from %s/%s@%s", len(docs), l.owner, l.repo, ref)
	return docs, nil
}

// getRepository fetches repository metadata.
func (l *Loader) getRepository(ctx context.Context) (*gh.Repository, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	repo, _, err := l.client.Repositories.Get(ctx, l.owner, l.repo)
	if err != nil {
		return nil, fmt.Errorf("get repo: %w", err)
	}
	return repo, nil
}

// getTree fetches the full recursive tree in one API call.
func (l *Loader) getTree(ctx context.Context, ref string) (*gh.Tree, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	tree, _, err := l.client.Git.GetTree(ctx, l.owner, l.repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	return tree, nil
}

// fetchBlob fetches and decodes one blob.
func (l *Loader) fetchBlob(ctx context.Context, sha string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	blob, _, err := l.client.Git.GetBlob(ctx, l.owner, l.repo, sha)
	if err != nil {
		return "", fmt.Errorf("get blob: %w", err)
	}

	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(blob.GetContent(), "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode blob: %w", err)
		}
		return string(decoded), nil
	}
	return blob.GetContent(), nil
}

// matches reports whether a repository path hits an include pattern.
func (l *Loader) matches(filePath string) bool {
	for _, pattern := range l.include {
		if ok, _ := doublestar.Match(pattern, filePath); ok {
			return true
		}
	}
	return false
}
