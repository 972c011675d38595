package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/shutterscout/internal/scout"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 4 << 20

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
	errMissingKey   = errors.New("api key is not configured")
)

// validate checks decoded payloads. Pointer fields tagged required may hold
// zero values but must be present in the body.
var validate = validator.New()

// getJSON performs a single GET and decodes the body into out. Every call
// sends a request; clients keep no state between calls. Transport and status
// failures are network errors; a body that is not JSON is a data error.
func getJSON(ctx context.Context, provider string, client *http.Client, req *http.Request, out any) error {
	if client == nil {
		return scout.NewError(provider, scout.KindNetwork, errNoHTTPClient)
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	resp, err := client.Do(req)
	if err != nil {
		return scout.NewError(provider, scout.KindNetwork, err)
	}
	defer resp.Body.Close()

	// Handle rate limiting and server errors explicitly.
	if resp.StatusCode == http.StatusTooManyRequests {
		return scout.NewError(provider, scout.KindNetwork, errRateLimited)
	}
	if resp.StatusCode >= 500 {
		return scout.NewError(provider, scout.KindNetwork, fmt.Errorf("%w: %d", errServerError, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return scout.NewError(provider, scout.KindNetwork, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return scout.NewError(provider, scout.KindNetwork, fmt.Errorf("read response: %w", err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return scout.NewError(provider, scout.KindData, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// checkShape validates a decoded payload against its struct tags.
func checkShape(provider string, v any) error {
	if err := validate.Struct(v); err != nil {
		return scout.NewError(provider, scout.KindData, fmt.Errorf("unexpected response shape: %w", err))
	}
	return nil
}

// observe records the outcome of one provider call and passes err through.
func observe(provider string, err error) error {
	result := "ok"
	if err != nil {
		result = string(scout.KindOf(err))
		if result == "" {
			result = "unknown"
		}
	}
	scout.ProviderRequests.WithLabelValues(provider, result).Inc()
	return err
}
