// Package uniprot implements the taxonomy and archive ports over the
// UniProt REST API (taxonomy and UniParc endpoints).
package uniprot

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/proteoparc/proteoparc/internal/domain"
	"github.com/proteoparc/proteoparc/internal/ports"
	"github.com/proteoparc/proteoparc/internal/retry"
)

const (
	// DefaultBaseURL is the public UniProt REST endpoint.
	DefaultBaseURL = "https://rest.uniprot.org"

	// DefaultPageSize is the largest page the search endpoint serves.
	DefaultPageSize = 500

	totalResultsHeader = "X-Total-Results"
	maxErrorBody       = 512
)

// DefaultExcludedDatabases lists repositories whose entries are synthetic.
var DefaultExcludedDatabases = []string{"FusionGDB"}

var nextLinkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Config controls the client.
type Config struct {
	BaseURL  string
	PageSize int

	// Exclude lists repository names filtered out of every search.
	Exclude []string

	Retry retry.Policy
}

// DefaultConfig returns a Config for the public service.
func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
		Exclude:  append([]string(nil), DefaultExcludedDatabases...),
		Retry:    retry.DefaultPolicy(),
	}
}

// Client implements ports.TaxonomyService and ports.ArchiveService.
// It only reads from the shared HTTP client, so one Client may serve many
// goroutines.
type Client struct {
	http   ports.HTTPClient
	cfg    Config
	logger zerolog.Logger
}

var (
	_ ports.TaxonomyService = (*Client)(nil)
	_ ports.ArchiveService  = (*Client)(nil)
)

// NewClient creates a client. Zero config fields take their defaults.
func NewClient(client ports.HTTPClient, cfg Config, logger zerolog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = def.Retry
	}
	return &Client{
		http:   client,
		cfg:    cfg,
		logger: logger,
	}
}

type response struct {
	body   []byte
	header http.Header
}

// get issues one GET under the retry policy.
func (c *Client) get(ctx context.Context, url, accept string) (response, error) {
	var out response
	err := c.cfg.Retry.Do(ctx, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", accept)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			err = &domain.TransportError{Op: "GET", URL: url, Err: err}
			c.logAttempt(err, url, attempt)
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			err = &domain.TransportError{Op: "read", URL: url, Err: err}
			c.logAttempt(err, url, attempt)
			return err
		}

		if resp.StatusCode/100 != 2 {
			if len(body) > maxErrorBody {
				body = body[:maxErrorBody]
			}
			err := &domain.ServiceError{
				StatusCode: resp.StatusCode,
				URL:        url,
				Body:       strings.TrimSpace(string(body)),
			}
			c.logAttempt(err, url, attempt)
			return err
		}

		out = response{body: body, header: resp.Header}
		return nil
	})
	return out, err
}

func (c *Client) logAttempt(err error, url string, attempt int) {
	if !c.cfg.Retry.Retryable(err) {
		return
	}
	c.logger.Warn().
		Err(err).
		Str("url", url).
		Int("attempt", attempt).
		Int("max_attempts", c.cfg.Retry.MaxAttempts).
		Msg("request failed")
}

// nextLink extracts the rel="next" target from a Link header.
func nextLink(h http.Header) string {
	for _, v := range h.Values("Link") {
		if m := nextLinkRe.FindStringSubmatch(v); m != nil {
			return m[1]
		}
	}
	return ""
}

// totalResults reads the total hit count, falling back to fallback when
// the header is absent or malformed.
func totalResults(h http.Header, fallback int) int {
	v := h.Get(totalResultsHeader)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
