// Package feedclient loads the post feed incrementally the way an infinite
// scroll does: one more page each time the last shown post becomes visible.
package feedclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"breadit/internal/services"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

var errMissingBaseURL = errors.New("feedclient: base url is required")

type Config struct {
	BaseURL        string
	PageSize       int
	SubbreaditName string
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

type feedResponse struct {
	Posts []services.PostView `json:"posts"`
}

// Pager accumulates feed pages. Concurrent visibility signals for the same
// page collapse into one request, and a post id is never held twice.
type Pager struct {
	base     *url.URL
	pageSize int
	name     string
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
	group    singleflight.Group

	mu        sync.Mutex
	posts     []services.PostView
	seen      map[string]struct{}
	nextPage  int
	exhausted bool
}

func New(cfg Config) (*Pager, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errMissingBaseURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("feedclient: parse base url: %w", err)
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	timeout := client.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{
		base:     base,
		pageSize: pageSize,
		name:     cfg.SubbreaditName,
		client:   client,
		timeout:  timeout,
		logger:   logger,
		seen:     make(map[string]struct{}),
		nextPage: 1,
	}, nil
}

// Seed installs an already rendered first page.
func (p *Pager) Seed(posts []services.PostView) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.appendLocked(posts)
	if p.nextPage == 1 {
		p.nextPage = 2
	}
}

// Posts returns a copy of everything loaded so far, in feed order.
func (p *Pager) Posts() []services.PostView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]services.PostView, len(p.posts))
	copy(out, p.posts)
	return out
}

func (p *Pager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// OnVisible signals that the post at index entered the viewport. Only the last
// loaded post triggers a fetch. It returns how many new posts were added.
//
// The fetch is shared by every caller waiting on the same page, so it runs
// under its own timeout rather than the first caller's context. A caller whose
// ctx ends stops waiting; the fetch carries on for the others.
func (p *Pager) OnVisible(ctx context.Context, index int) (int, error) {
	p.mu.Lock()
	if p.exhausted || index < len(p.posts)-1 {
		p.mu.Unlock()
		return 0, nil
	}
	page := p.nextPage
	p.mu.Unlock()

	ch := p.group.DoChan(strconv.Itoa(page), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		return p.load(fetchCtx, page)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		if res.Shared {
			p.logger.Debug("feed page shared", zap.Int("page", page))
		}
		return res.Val.(int), nil
	}
}

// Next fetches the following page regardless of visibility.
func (p *Pager) Next(ctx context.Context) (int, error) {
	p.mu.Lock()
	last := len(p.posts) - 1
	p.mu.Unlock()
	return p.OnVisible(ctx, last)
}

func (p *Pager) load(ctx context.Context, page int) (int, error) {
	p.mu.Lock()
	stale := p.nextPage != page
	p.mu.Unlock()
	if stale {
		return 0, nil
	}

	posts, err := p.fetch(ctx, page)
	if err != nil {
		p.logger.Warn("fetch feed page failed", zap.Int("page", page), zap.Error(err))
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nextPage != page {
		return 0, nil
	}
	p.nextPage++
	if len(posts) == 0 {
		p.exhausted = true
		return 0, nil
	}
	return p.appendLocked(posts), nil
}

func (p *Pager) appendLocked(posts []services.PostView) int {
	added := 0
	for _, post := range posts {
		if _, dup := p.seen[post.ID]; dup {
			continue
		}
		p.seen[post.ID] = struct{}{}
		p.posts = append(p.posts, post)
		added++
	}
	return added
}

func (p *Pager) fetch(ctx context.Context, page int) ([]services.PostView, error) {
	endpoint := p.base.JoinPath("api", "posts")
	q := endpoint.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(p.pageSize))
	if p.name != "" {
		q.Set("subbreaditName", p.name)
	}
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feedclient: page %d: unexpected status %s", page, resp.Status)
	}
	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("feedclient: decode page %d: %w", page, err)
	}
	return body.Posts, nil
}
