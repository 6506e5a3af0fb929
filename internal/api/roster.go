package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"roster-tracker/internal/config"
	"roster-tracker/internal/constants"
	"roster-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// RosterClient talks to the roster API over HTTP. Every error it returns
// wraps one of the domain sentinels.
type RosterClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

func NewRosterClient(cfg *config.Config, logger zerolog.Logger) *RosterClient {
	return &RosterClient{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "api").Logger(),
	}
}

func (c *RosterClient) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	resp, err := doRequest[[]wirePlayer](ctx, c, fasthttp.MethodGet, "/api/players", nil)
	if err != nil {
		return nil, err
	}
	players := make([]domain.Player, 0, len(*resp))
	for _, p := range *resp {
		players = append(players, p.toDomain())
	}
	return players, nil
}

func (c *RosterClient) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	resp, err := doRequest[wirePlayer](ctx, c, fasthttp.MethodGet, "/api/players/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	p := resp.toDomain()
	return &p, nil
}

func (c *RosterClient) GetSimilar(ctx context.Context, id, season string) ([]domain.SimilarityMatch, error) {
	path := fmt.Sprintf("/api/players/%s/seasons/%s/similar", url.PathEscape(id), url.PathEscape(season))
	resp, err := doRequest[[]domain.SimilarityMatch](ctx, c, fasthttp.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if *resp == nil {
		return []domain.SimilarityMatch{}, nil
	}
	return *resp, nil
}

func (c *RosterClient) CreatePlayer(ctx context.Context, fields domain.PlayerFields) (*domain.Player, error) {
	resp, err := doRequest[wirePlayer](ctx, c, fasthttp.MethodPost, "/api/players", fields)
	if err != nil {
		return nil, err
	}
	p := resp.toDomain()
	return &p, nil
}

func (c *RosterClient) UpdatePlayer(ctx context.Context, id string, fields domain.PlayerFields) (*domain.Player, error) {
	resp, err := doRequest[wirePlayer](ctx, c, fasthttp.MethodPut, "/api/players/"+url.PathEscape(id), fields)
	if err != nil {
		return nil, err
	}
	p := resp.toDomain()
	return &p, nil
}

func (c *RosterClient) DeletePlayer(ctx context.Context, id string) error {
	_, err := c.do(ctx, fasthttp.MethodDelete, "/api/players/"+url.PathEscape(id), nil)
	return err
}

func doRequest[T any](ctx context.Context, client *RosterClient, method, path string, body any) (*T, error) {
	raw, err := client.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w: %w", method, path, domain.ErrDecode, err)
	}
	return &result, nil
}

func (c *RosterClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, constants.ExternalAPITimeout)
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("failed to %s %s: %w: %w", method, path, domain.ErrNetwork, err)
	}

	status := resp.StatusCode()
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("took", time.Since(start)).
		Msg("request completed")

	if status < 200 || status >= 300 {
		return nil, statusError(method, path, status, resp.Body())
	}

	// The body buffer is released with resp.
	return bytes.Clone(resp.Body()), nil
}

func statusError(method, path string, status int, body []byte) error {
	var sentinel error
	switch status {
	case fasthttp.StatusNotFound:
		sentinel = domain.ErrNotFound
	case fasthttp.StatusBadRequest, fasthttp.StatusUnprocessableEntity:
		sentinel = domain.ErrValidation
	default:
		sentinel = domain.ErrNetwork
	}

	if detail := errorDetail(body); detail != "" {
		return fmt.Errorf("%s %s returned %d: %s: %w", method, path, status, detail, sentinel)
	}
	return fmt.Errorf("%s %s returned %d: %w", method, path, status, sentinel)
}
