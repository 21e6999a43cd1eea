package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/service"
	"fitsync/internal/errors"
)

const (
	consentProbeTimeout = 2 * time.Second
	locationPollPeriod  = 200 * time.Millisecond
)

// webStrategy logs in by driving the platform's web login form in an isolated,
// freshly launched browser per call. It is registered ahead of the direct-API
// strategy because the platform's token endpoint is the less reliable path.
type webStrategy struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewWebStrategy is the constructor for the browser-automation strategy.
func NewWebStrategy(cfg *config.Config, logger *slog.Logger) service.AuthStrategy {
	return &webStrategy{cfg: cfg, logger: logger}
}

// Name identifies this strategy in logs and error context.
func (s *webStrategy) Name() string {
	return "web"
}

// CanHandle accepts configurations that carry a webAuth block.
func (s *webStrategy) CanHandle(cfg *config.Config) bool {
	return cfg.Auth.WebAuth != nil && cfg.Platform.BaseURL != ""
}

// RefreshToken is unsupported: the platform offers no non-interactive refresh
// for web sessions. Surfacing the distinct error lets the caller fall back to
// the direct-API strategy.
func (s *webStrategy) RefreshToken(ctx context.Context, refreshToken string) (*entity.AuthToken, error) {
	return nil, errors.Wrap(domainerrors.ErrUnsupportedOperation, "web login cannot refresh tokens non-interactively")
}

// Authenticate runs the login state machine: navigate, dismiss consent, enter
// credentials, submit, confirm the redirect into the authenticated area. A
// network interceptor registered before navigation captures the token and
// user id concurrently. The browser is torn down on every exit path.
func (s *webStrategy) Authenticate(ctx context.Context, creds entity.Credentials) (*entity.Session, error) {
	web := s.cfg.Auth.WebAuth
	if web == nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "web auth configuration missing")
	}

	attemptID := uuid.New().String()
	logger := s.logger.With(slog.String("attemptID", attemptID), slog.String("username", creds.Username))
	logger.Info("Starting browser login", slog.String("loginURL", web.LoginURL), slog.Bool("headless", web.Headless))

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !web.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if web.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(web.ExecutablePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Cancelling the task context closes the tab and the browser process, so
	// repeated failed logins cannot leak OS processes.
	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	intercept := newInterceptor(
		s.cfg.Platform.TokenPath,
		s.cfg.Platform.ProfilePath,
		func(requestID network.RequestID) ([]byte, error) {
			c := chromedp.FromContext(taskCtx)

			return network.GetResponseBody(requestID).Do(cdp.WithExecutor(taskCtx, c.Target))
		},
		logger,
	)

	// Registered before navigation so no early response slips past.
	chromedp.ListenTarget(taskCtx, intercept.dispatch)

	if err := s.runStep(taskCtx, web.StepTimeout,
		network.Enable(),
		chromedp.Navigate(web.LoginURL),
	); err != nil {
		return nil, errors.Wrap(domainerrors.ErrNetworkFailure, "navigate to login page: "+err.Error())
	}

	s.dismissConsent(taskCtx, web, logger)

	if err := s.runStep(taskCtx, web.StepTimeout,
		chromedp.WaitVisible(web.UsernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(web.UsernameSelector, creds.Username, chromedp.ByQuery),
		chromedp.WaitVisible(web.PasswordSelector, chromedp.ByQuery),
		chromedp.SendKeys(web.PasswordSelector, creds.Password, chromedp.ByQuery),
	); err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "credential entry: "+err.Error())
	}

	if err := s.runStep(taskCtx, web.StepTimeout,
		chromedp.Click(web.SubmitSelector, chromedp.ByQuery),
	); err != nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "submit login form: "+err.Error())
	}

	// The redirect into the authenticated area is the authoritative success
	// signal, not the interception below. The error banner is checked on the
	// same poll so a rejection surfaces immediately and a clean login pays no
	// banner wait.
	if err := s.confirmLogin(taskCtx, web, logger); err != nil {
		return nil, err
	}

	// Join any body fetches still in flight before reading the artifacts.
	intercept.wait()

	captured, userID := intercept.result()
	expiresAt := time.Now().Add(s.cfg.Auth.DefaultTokenExpiration)

	session, err := assembleSession(captured, userID, creds.Username, expiresAt)
	if err != nil {
		return nil, err
	}

	logger.Info("Browser login succeeded", slog.String("userID", session.User.ID))

	return session, nil
}

// assembleSession builds the session from intercepted artifacts. Both the
// token and the user id must have arrived by the end of the flow; the login
// UI exposes no display name, so the user is synthesized from the captured id
// and the submitted username.
func assembleSession(captured *tokenPayload, userID, username string, expiresAt time.Time) (*entity.Session, error) {
	if captured == nil && userID == "" {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "intercepted neither token nor user id during login")
	}
	if captured == nil {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "user id intercepted but no token response arrived")
	}
	if userID == "" {
		return nil, errors.Wrap(domainerrors.ErrAuthenticationFailed, "token intercepted but no user identity response arrived")
	}

	token, err := entity.NewAuthToken(captured.AccessToken, captured.TokenType, expiresAt, captured.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "assemble auth token from interception")
	}

	user, err := entity.NewUser(userID, username, username, "")
	if err != nil {
		return nil, errors.Wrap(err, "assemble user from interception")
	}

	return &entity.Session{Token: token, User: user}, nil
}

// runStep bounds a group of browser actions with the configured step timeout.
// Exceeding any step fails the whole attempt; there is no per-step retry.
func (s *webStrategy) runStep(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return chromedp.Run(stepCtx, actions...)
}

// dismissConsent clicks the cookie-consent control if it appears within a
// short probe window. Absence is not an error.
func (s *webStrategy) dismissConsent(ctx context.Context, web *config.WebAuthConfig, logger *slog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, consentProbeTimeout)
	defer cancel()

	err := chromedp.Run(probeCtx,
		chromedp.WaitVisible(web.ConsentSelector, chromedp.ByQuery),
		chromedp.Click(web.ConsentSelector, chromedp.ByQuery),
	)
	if err != nil {
		logger.Debug("No consent banner within probe window")

		return
	}

	logger.Debug("Consent banner dismissed")
}

// confirmLogin polls the tab after submit until it either enters the
// authenticated area or shows an inline login error, whichever comes first.
// The banner check is a non-blocking querySelector so a clean login never
// waits on a selector that is not going to appear.
func (s *webStrategy) confirmLogin(ctx context.Context, web *config.WebAuthConfig, logger *slog.Logger) error {
	waitCtx, cancel := context.WithTimeout(ctx, web.StepTimeout)
	defer cancel()

	ticker := time.NewTicker(locationPollPeriod)
	defer ticker.Stop()

	for {
		var current string
		if err := chromedp.Run(waitCtx, chromedp.Location(&current)); err != nil {
			return errors.Wrap(domainerrors.ErrAuthenticationFailed, "redirect confirmation: "+err.Error())
		}
		if strings.HasPrefix(current, web.AuthenticatedURL) {
			return nil
		}

		if banner := s.readErrorBanner(waitCtx, web.ErrorSelector); banner != "" {
			logger.Warn("Login form reported an error", slog.String("banner", banner))

			return errors.Wrap(domainerrors.ErrInvalidCredentials, banner)
		}

		select {
		case <-waitCtx.Done():
			return errors.Wrap(domainerrors.ErrAuthenticationFailed, "redirect confirmation: "+waitCtx.Err().Error())
		case <-ticker.C:
		}
	}
}

// bannerProbeScript builds the querySelector probe for the login error
// banner. Returning "" for an absent element keeps the probe non-blocking,
// unlike a selector wait.
func bannerProbeScript(selector string) string {
	return fmt.Sprintf(
		`(() => { const el = document.querySelector(%s); return el ? el.textContent : ""; })()`,
		strconv.Quote(selector),
	)
}

// readErrorBanner returns the banner's trimmed text, or "" when the element
// is absent, empty, or unreadable.
func (s *webStrategy) readErrorBanner(ctx context.Context, selector string) string {
	var text string
	if err := chromedp.Run(ctx, chromedp.Evaluate(bannerProbeScript(selector), &text)); err != nil {
		return ""
	}

	return strings.TrimSpace(text)
}
