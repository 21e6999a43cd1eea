// Package browser implements the browser-automation authentication strategy.
// It drives a real login form and passively intercepts the network responses
// that carry the access token and user id, instead of scraping the UI.
package browser

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
)

// bodyFetcher retrieves a finished response body for a CDP request id. In
// production it is bound to the browser target; tests inject a stub.
type bodyFetcher func(requestID network.RequestID) ([]byte, error)

// tokenPayload is the token-issuance response body observed on the wire.
type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// userPayload is the user-identity response body observed on the wire.
type userPayload struct {
	ID string `json:"id"`
}

// interceptor inspects every network response during the login flow and keeps
// the latest matching token and user id. Malformed JSON and non-2xx responses
// on the watched paths are logged and ignored; only the end-of-flow check in
// the strategy decides success.
type interceptor struct {
	tokenPath string
	userPath  string
	fetchBody bodyFetcher
	logger    *slog.Logger

	inflight sync.WaitGroup

	mu     sync.Mutex
	token  *tokenPayload
	userID string
}

func newInterceptor(tokenPath, userPath string, fetch bodyFetcher, logger *slog.Logger) *interceptor {
	return &interceptor{
		tokenPath: tokenPath,
		userPath:  userPath,
		fetchBody: fetch,
		logger:    logger,
	}
}

// dispatch hands one CDP event to its own goroutine so body retrieval never
// blocks the browser's event loop. Every handler is tracked; wait joins them
// all before the captured artifacts are read.
func (i *interceptor) dispatch(ev any) {
	i.inflight.Add(1)
	go func() {
		defer i.inflight.Done()
		i.handle(ev)
	}()
}

// wait blocks until every dispatched handler has finished, so a token
// response whose body fetch is still in flight cannot be missed.
func (i *interceptor) wait() {
	i.inflight.Wait()
}

// handle processes one CDP event. It is safe to call from multiple
// goroutines.
func (i *interceptor) handle(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Response == nil {
		return
	}

	url := resp.Response.URL
	isToken := strings.Contains(url, i.tokenPath)
	isUser := strings.Contains(url, i.userPath)
	if !isToken && !isUser {
		return
	}

	if resp.Response.Status < 200 || resp.Response.Status >= 300 {
		i.logger.Debug("Ignoring non-2xx response on watched path",
			slog.String("url", url),
			slog.Int64("status", resp.Response.Status))

		return
	}

	body, err := i.fetchBody(resp.RequestID)
	if err != nil {
		i.logger.Debug("Failed to read response body on watched path",
			slog.String("url", url),
			slog.Any("error", err))

		return
	}

	if isToken {
		i.captureToken(url, body)
	}
	if isUser {
		i.captureUser(url, body)
	}
}

func (i *interceptor) captureToken(url string, body []byte) {
	var payload tokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		i.logger.Debug("Malformed token payload ignored", slog.String("url", url), slog.Any("error", err))

		return
	}
	if payload.AccessToken == "" {
		return
	}

	i.mu.Lock()
	i.token = &payload
	i.mu.Unlock()

	i.logger.Debug("Access token captured from network traffic", slog.String("url", url))
}

func (i *interceptor) captureUser(url string, body []byte) {
	var payload userPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		i.logger.Debug("Malformed user payload ignored", slog.String("url", url), slog.Any("error", err))

		return
	}
	if payload.ID == "" {
		return
	}

	i.mu.Lock()
	i.userID = payload.ID
	i.mu.Unlock()

	i.logger.Debug("User id captured from network traffic", slog.String("url", url))
}

// result returns the captured artifacts. The strategy reads it only after the
// navigation sequence has signalled completion, making this the single
// synchronization point between the two concurrent timelines.
func (i *interceptor) result() (*tokenPayload, string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.token, i.userID
}
