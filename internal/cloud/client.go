// Package cloud fetches real-time device telemetry from an Ecowitt-style
// cloud API. Responses arrive as a {code, msg, time, data} envelope where a
// non-zero code signals a source-side failure; the data member is the nested
// category -> channel -> {value, unit} payload the normalizer understands.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public real-time endpoint of the Ecowitt cloud API.
const DefaultBaseURL = "https://api.ecowitt.net/api/v3/device/real_time"

var (
	// ErrSourceFailure marks a well-formed envelope whose code reports a
	// failure on the provider side.
	ErrSourceFailure = errors.New("cloud source reported failure")

	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Credentials identify one station on the cloud API.
type Credentials struct {
	ApplicationKey string
	APIKey         string
	MAC            string
}

// Configured reports whether the credentials are complete enough to poll.
func (c Credentials) Configured() bool {
	return c.ApplicationKey != "" && c.APIKey != "" && c.MAC != ""
}

// backoff controls the retry schedule between failed attempts.
type backoff struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Client polls the cloud API with retries, exponential backoff and a circuit
// breaker so a flapping upstream cannot amplify into a request storm.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	backoff    backoff
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a cloud API client. baseURL may be empty to use the
// public endpoint; the http.Client supplies the bounded request timeout.
func NewClient(httpClient *http.Client, baseURL string, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ecowitt-cloud",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		creds:      creds,
		backoff: backoff{
			maxRetries:      2,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// envelope is the cloud API response wrapper.
type envelope struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Time string         `json:"time"`
	Data map[string]any `json:"data"`
}

// FetchRealtime retrieves the current nested sensor payload for the
// configured station. A non-zero envelope code returns ErrSourceFailure;
// the caller logs and skips the cycle, no reading is produced.
func (c *Client) FetchRealtime(ctx context.Context) (map[string]any, error) {
	if !c.creds.Configured() {
		return nil, fmt.Errorf("cloud credentials are not configured")
	}

	resp, err := c.do(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding cloud response: %w", err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("%w: code=%d msg=%q", ErrSourceFailure, env.Code, env.Msg)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: empty data member", ErrSourceFailure)
	}

	return env.Data, nil
}

func (c *Client) buildRequest() (*http.Request, error) {
	values := url.Values{}
	values.Set("application_key", c.creds.ApplicationKey)
	values.Set("api_key", c.creds.APIKey)
	values.Set("mac", c.creds.MAC)
	values.Set("call_back", "all")

	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	return http.NewRequest(http.MethodGet, u, nil)
}

// do executes the request through the circuit breaker, retrying transient
// failures with exponential backoff. An open circuit propagates immediately
// so the next scheduled tick retries naturally.
func (c *Client) do(ctx context.Context) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := c.buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.maxRetries {
			return nil, lastErr
		}

		delay := c.backoff.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.maxInterval && c.backoff.maxInterval > 0 {
			delay = c.backoff.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
