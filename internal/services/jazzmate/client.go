package jazzmate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jazzmate/internal/config"
	"jazzmate/internal/services"
	"jazzmate/internal/services/transport"
)

const component = "jazzmate"

// Client talks to the JazzMate backend REST API.
type Client struct {
	http *transport.Client
}

// NewClient wraps an existing transport.
func NewClient(t *transport.Client) *Client {
	return &Client{http: t}
}

// NewFromConfig builds a client for the configured backend.
func NewFromConfig(cfg *config.Config, opts ...transport.Option) *Client {
	tc := transport.Config{Name: component}
	if cfg != nil {
		tc.BaseURL = cfg.Backend.BaseURL
		tc.Timeout = cfg.BackendTimeout()
		tc.RequestsPerSecond = cfg.Backend.RequestsPerSecond
		tc.Burst = cfg.Backend.Burst
		tc.BreakerFailures = cfg.Backend.BreakerFailures
		tc.BreakerCooldown = cfg.BreakerCooldown()
	}
	return NewClient(transport.New(tc, opts...))
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.http.Do(ctx, transport.Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// GetReview fetches a review and its recommendations (if generated).
func (c *Client) GetReview(ctx context.Context, id ID) (*ReviewWithRecommendations, error) {
	var review ReviewWithRecommendations
	if err := c.get(ctx, "/api/user-reviews/"+url.PathEscape(id.String()), nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews returns public reviews, or the reviews of query.UserID when set.
func (c *Client) ListReviews(ctx context.Context, query ReviewQuery) ([]Review, error) {
	params := pageParams(query.Page, query.Size)
	if user := strings.TrimSpace(query.UserID); user != "" {
		params.Set("userId", user)
	}
	var reviews []Review
	if err := c.get(ctx, "/api/user-reviews", params, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// CreateReview validates and submits req. The backend answers either with the
// stored review or with a {success, message, data} envelope around it.
func (c *Client) CreateReview(ctx context.Context, req ReviewRequest) (*Review, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := c.http.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/api/user-reviews", Body: req}, &raw); err != nil {
		return nil, err
	}
	payload := []byte(raw)
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return nil, services.Wrap(services.ErrValidation, component, "create review", env.Message, nil)
		}
		payload = env.Data
	}
	var review Review
	if err := json.Unmarshal(payload, &review); err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "create review", "decode review", err)
	}
	if review.ID.IsZero() {
		return nil, services.Wrap(services.ErrTransient, component, "create review", "response did not include a review id", nil)
	}
	return &review, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id ID) error {
	return c.http.Do(ctx, transport.Request{Method: http.MethodDelete, Path: "/api/user-reviews/" + url.PathEscape(id.String())}, nil)
}

// GetRecommendations returns the raw recommendation records for a review.
func (c *Client) GetRecommendations(ctx context.Context, id ID) ([]RecommendationRecord, error) {
	var records []RecommendationRecord
	if err := c.get(ctx, "/api/user-reviews/"+url.PathEscape(id.String())+"/recommendations", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetTrack fetches catalog details for a track.
func (c *Client) GetTrack(ctx context.Context, id ID) (*Track, error) {
	var track Track
	if err := c.get(ctx, "/api/tracks/"+url.PathEscape(id.String()), nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// SearchAlbums searches albums by artist or title.
func (c *Client) SearchAlbums(ctx context.Context, query string, page, size int) ([]Album, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, component, "search albums", "query is required", nil)
	}
	params := pageParams(page, size)
	params.Set("q", query)
	var albums []Album
	if err := c.get(ctx, "/api/albums/search", params, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// GetAlbum fetches a single album.
func (c *Client) GetAlbum(ctx context.Context, id ID) (*Album, error) {
	var album Album
	if err := c.get(ctx, "/api/albums/"+url.PathEscape(id.String()), nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// ListCritics returns one page of critic reviews that carry a summary.
func (c *Client) ListCritics(ctx context.Context, page, size int) (*CriticsPage, error) {
	var result CriticsPage
	if err := c.get(ctx, "/api/critics", pageParams(page, size), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCritic fetches a single critic review.
func (c *Client) GetCritic(ctx context.Context, id ID) (*CriticsReview, error) {
	var review CriticsReview
	if err := c.get(ctx, "/api/critics/"+url.PathEscape(id.String()), nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func pageParams(page, size int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		params.Set("size", strconv.Itoa(size))
	}
	return params
}
