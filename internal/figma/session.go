package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const (
	makeNewURL = "https://www.figma.com/make/new"
	loginURL   = "https://www.figma.com/login"
)

// SessionConfig holds browser generation session configuration.
type SessionConfig struct {
	Email    string
	Password string
	Headless bool

	// StateDir holds the persisted authentication state between runs.
	StateDir string
	// OutputDir receives screenshots.
	OutputDir string

	PollInterval        time.Duration
	InitialCeiling      time.Duration
	ContinuationCeiling time.Duration
	SettleDelay         time.Duration
	LoginTimeout        time.Duration
}

func (c SessionConfig) stateDir() string {
	if c.StateDir == "" {
		return ".figma-state"
	}
	return c.StateDir
}

func (c SessionConfig) outputDir() string {
	if c.OutputDir == "" {
		return "output"
	}
	return c.OutputDir
}

func (c SessionConfig) pollInterval() time.Duration {
	if c.PollInterval == 0 {
		return 5 * time.Second
	}
	return c.PollInterval
}

// initialCeiling bounds the wait for the very first generation, which
// tends to take longer than continuations.
func (c SessionConfig) initialCeiling() time.Duration {
	if c.InitialCeiling == 0 {
		return 180 * time.Second
	}
	return c.InitialCeiling
}

func (c SessionConfig) continuationCeiling() time.Duration {
	if c.ContinuationCeiling == 0 {
		return 120 * time.Second
	}
	return c.ContinuationCeiling
}

func (c SessionConfig) settleDelay() time.Duration {
	if c.SettleDelay == 0 {
		return 3 * time.Second
	}
	return c.SettleDelay
}

func (c SessionConfig) loginTimeout() time.Duration {
	if c.LoginTimeout == 0 {
		return 30 * time.Second
	}
	return c.LoginTimeout
}

// Session drives the design tool's generation flow in a real browser. The
// tool has no write API, so element queries go through accessibility roles
// and labels rather than visual selectors. A session owns at most one
// browser context; Close is idempotent and safe after a failed Init.
type Session struct {
	cfg SessionConfig
	log *zap.Logger

	browser *rod.Browser
	lc      *launcher.Launcher
	page    *rod.Page
	closed  bool

	// Seams for tests: signal reports whether the post-generation
	// feedback control is visible; find/visible/click/escape wrap the
	// page interactions so element flows run without a browser.
	signal  func() bool
	sleep   func(time.Duration)
	now     func() time.Time
	find    func(timeout time.Duration, selector, pattern string) (*rod.Element, error)
	visible func(timeout time.Duration, selector, pattern string) bool
	click   func(el *rod.Element) error
	escape  func()
}

// NewSession creates an unstarted generation session.
func NewSession(cfg SessionConfig, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		cfg:   cfg,
		log:   logger,
		sleep: time.Sleep,
		now:   time.Now,
	}
	s.signal = s.feedbackControlVisible
	s.find = s.locate
	s.visible = s.locateVisible
	s.click = clickElement
	s.escape = s.pressEscape
	return s
}

// Init launches the browser, restores any saved authentication state, and
// navigates to the generation entry point. If the saved state is missing
// or stale it runs the login flow with the configured credentials.
func (s *Session) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.stateDir(), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	s.lc = launcher.New().
		Headless(s.cfg.Headless).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	controlURL, err := s.lc.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	s.browser = rod.New().ControlURL(controlURL).Context(ctx)
	if err := s.browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	s.page = page

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             1440,
		Height:            900,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	s.restoreAuthState()

	if err := s.navigate(makeNewURL); err != nil {
		return err
	}
	s.sleep(3 * time.Second)

	// Logged-in entry shows either the main menu or the prompt input;
	// logged-out redirects to the public landing page.
	loggedIn := s.visible(10*time.Second, "textarea", "") ||
		s.visible(2*time.Second, `button[aria-label*="Main menu" i]`, "")

	if !loggedIn {
		s.log.Info("no active session, logging in")
		if err := s.login(); err != nil {
			return err
		}
	} else {
		s.log.Info("reusing saved session")
	}

	s.persistAuthState()
	return nil
}

// login fills the credential form and waits for the post-login URL.
func (s *Session) login() error {
	if s.cfg.Email == "" || s.cfg.Password == "" {
		return &AuthError{Reason: "no saved session and no browser credentials"}
	}

	if err := s.navigate(loginURL); err != nil {
		return err
	}

	email, err := s.find(15*time.Second, `input[name="email"]`, "")
	if err != nil {
		return &AuthError{Reason: "login form did not appear"}
	}
	if err := email.Input(s.cfg.Email); err != nil {
		return fmt.Errorf("fill email: %w", err)
	}

	password, err := s.find(5*time.Second, `input[name="password"]`, "")
	if err != nil {
		return &AuthError{Reason: "password field did not appear"}
	}
	if err := password.Input(s.cfg.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	submit, err := s.find(5*time.Second, `button[type="submit"]`, "")
	if err != nil {
		return &AuthError{Reason: "submit control did not appear"}
	}
	if err := s.click(submit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	// Success is observed as a redirect to the files view.
	deadline := s.now().Add(s.cfg.loginTimeout())
	for {
		if info, err := s.page.Info(); err == nil && strings.Contains(info.URL, "/files") {
			break
		}
		if s.now().After(deadline) {
			return &AuthError{Reason: "login success URL not observed within timeout"}
		}
		s.sleep(time.Second)
	}
	s.log.Info("login successful")

	if err := s.navigate(makeNewURL); err != nil {
		return err
	}
	s.sleep(3 * time.Second)
	return nil
}

// SelectLibrary picks the named design library in the tool's picker.
// Idempotent: returns immediately if a library is already selected. A
// picker or entry that cannot be found is a soft failure; the session
// continues without a library and generation quality just degrades.
func (s *Session) SelectLibrary(name string) error {
	if s.page == nil {
		return fmt.Errorf("session not initialized")
	}
	if name == "" {
		return nil
	}

	if s.visible(2*time.Second, "button", "/is selected/i") {
		s.log.Info("design library already selected")
		return nil
	}

	picker, err := s.find(5*time.Second, `[data-testid="figmake-empty-state-library-import-button"]`, "")
	if err != nil {
		picker, err = s.find(3*time.Second, "button", "/select a library/i")
	}
	if err != nil {
		s.log.Warn("library picker control not found, skipping library selection")
		return nil
	}
	if err := s.click(picker); err != nil {
		return fmt.Errorf("open library picker: %w", err)
	}
	s.sleep(1500 * time.Millisecond)

	if !s.visible(5*time.Second, `[role="dialog"]`, "") {
		s.log.Warn("library picker dialog did not open")
		s.escape()
		return nil
	}

	entry, err := s.find(3*time.Second, `[role="dialog"] button`, "/"+regexp.QuoteMeta(name)+"/i")
	if err != nil {
		s.log.Warn("no matching library in picker, closing", zap.String("library", name))
		if closeBtn, cerr := s.find(time.Second, `[role="dialog"] button`, "/close/i"); cerr == nil {
			_ = s.click(closeBtn)
		} else {
			s.escape()
		}
		return nil
	}
	if err := s.click(entry); err != nil {
		return fmt.Errorf("select library: %w", err)
	}
	s.sleep(time.Second)

	if s.visible(3*time.Second, "button", "/is selected/i") {
		s.log.Info("design library selected", zap.String("library", name))
	} else {
		s.log.Warn("library clicked but selection state unverified", zap.String("library", name))
	}
	return nil
}

// SubmitInitialPrompt fills the first prompt input, submits it, and blocks
// until the completion signal (or its ceiling). Returns the page URL as
// the generated-artifact locator.
func (s *Session) SubmitInitialPrompt(ctx context.Context, text string) (string, error) {
	if s.page == nil {
		return "", fmt.Errorf("session not initialized")
	}

	box, err := s.find(15*time.Second, "textarea", "")
	if err != nil {
		return "", fmt.Errorf("prompt input not found: %w", err)
	}
	if err := s.fillAndSubmit(box, text); err != nil {
		return "", err
	}

	s.log.Info("waiting for first generation", zap.Int("prompt_chars", len(text)))
	if err := s.waitForGeneration(ctx, s.cfg.initialCeiling()); err != nil {
		return "", err
	}

	info, err := s.page.Info()
	if err != nil {
		return "", fmt.Errorf("read page URL: %w", err)
	}
	return info.URL, nil
}

// SubmitContinuationPrompt fills the tool's change-request input, the
// mechanism for iterating on an existing generation, and blocks until the
// completion signal. The artifact URL is unchanged; only its content grows.
func (s *Session) SubmitContinuationPrompt(ctx context.Context, text string) error {
	if s.page == nil {
		return fmt.Errorf("session not initialized")
	}

	box, err := s.find(15*time.Second, `textarea[placeholder*="changes" i]`, "")
	if err != nil {
		box, err = s.find(5*time.Second, "textarea", "/ask for changes/i")
	}
	if err != nil {
		return fmt.Errorf("change-request input not found: %w", err)
	}
	if err := s.fillAndSubmit(box, text); err != nil {
		return err
	}

	s.log.Info("waiting for continuation generation")
	return s.waitForGeneration(ctx, s.cfg.continuationCeiling())
}

func (s *Session) fillAndSubmit(box *rod.Element, text string) error {
	if err := s.click(box); err != nil {
		return fmt.Errorf("focus prompt input: %w", err)
	}
	if err := box.Input(text); err != nil {
		return fmt.Errorf("fill prompt input: %w", err)
	}
	s.sleep(500 * time.Millisecond)

	if send, err := s.find(2*time.Second, "button", "/send|submit|generate/i"); err == nil {
		if err := s.click(send); err != nil {
			return fmt.Errorf("click send: %w", err)
		}
		return nil
	}
	if err := s.page.Keyboard.Press(input.Enter); err != nil {
		return fmt.Errorf("submit prompt: %w", err)
	}
	return nil
}

// waitForGeneration polls for the post-generation feedback control. The
// tool exposes no job-status signal, so a reached ceiling is logged and
// the session proceeds anyway: a missed signal is more likely than a true
// timeout, and the caller treats unconfirmed completion as lower
// confidence.
func (s *Session) waitForGeneration(ctx context.Context, ceiling time.Duration) error {
	start := s.now()
	for s.now().Sub(start) < ceiling {
		s.sleep(s.cfg.pollInterval())
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.signal() {
			s.sleep(s.cfg.settleDelay())
			return nil
		}
		s.log.Debug("still generating", zap.Duration("elapsed", s.now().Sub(start)))
	}
	s.log.Warn("generation ceiling reached, proceeding without completion signal",
		zap.Duration("ceiling", ceiling))
	return nil
}

func (s *Session) feedbackControlVisible() bool {
	return s.visible(time.Second, "button", "/thumbs up/i")
}

// SwitchRoute points the preview at another route. Best-effort: a missing
// route selector or option is a silent no-op.
func (s *Session) SwitchRoute(route string) error {
	if s.page == nil {
		return fmt.Errorf("session not initialized")
	}

	combo, err := s.find(3*time.Second, `[aria-label*="Path to page" i]`, "")
	if err != nil {
		return nil
	}
	if err := s.click(combo); err != nil {
		return nil
	}
	s.sleep(500 * time.Millisecond)

	option, err := s.find(2*time.Second, `[role="option"]`, "/"+regexp.QuoteMeta(route)+"/i")
	if err != nil {
		return nil
	}
	if err := s.click(option); err != nil {
		return nil
	}
	s.sleep(time.Second)
	s.log.Info("switched preview route", zap.String("route", route))
	return nil
}

// Screenshot captures the current viewport into the output directory and
// returns the file path.
func (s *Session) Screenshot(name string) (string, error) {
	if s.page == nil {
		return "", fmt.Errorf("session not initialized")
	}

	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	if err := os.MkdirAll(s.cfg.outputDir(), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.cfg.outputDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	s.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// CurrentURL returns the page URL, or empty when unavailable.
func (s *Session) CurrentURL() string {
	if s.page == nil {
		return ""
	}
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close persists authentication state and tears down the browser. Safe to
// call more than once, and on a session whose Init failed.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.persistAuthState()

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
		s.page = nil
	}
	if s.lc != nil {
		s.lc.Cleanup()
		s.lc = nil
	}
	return err
}

func (s *Session) authStatePath() string {
	return filepath.Join(s.cfg.stateDir(), "cookies.json")
}

// persistAuthState snapshots cookies so future sessions skip login.
func (s *Session) persistAuthState() {
	if s.page == nil {
		return
	}
	res, err := proto.NetworkGetCookies{}.Call(s.page)
	if err != nil {
		s.log.Debug("cookie snapshot failed", zap.Error(err))
		return
	}
	data, err := json.MarshalIndent(res.Cookies, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(s.authStatePath(), data, 0o600); err != nil {
		s.log.Debug("auth state write failed", zap.Error(err))
	}
}

// restoreAuthState loads a prior cookie snapshot, if any.
func (s *Session) restoreAuthState() {
	data, err := os.ReadFile(s.authStatePath())
	if err != nil {
		return
	}
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		s.log.Debug("auth state unreadable, ignoring", zap.Error(err))
		return
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite,
			Priority: c.Priority,
		})
	}
	if len(params) > 0 {
		_ = s.page.SetCookies(params)
	}
}

func (s *Session) navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s: %w", url, err)
	}
	return nil
}

// locate finds an element bounded by timeout. An empty pattern matches by
// selector alone; otherwise pattern is a js regex over the element text.
func (s *Session) locate(timeout time.Duration, selector, pattern string) (*rod.Element, error) {
	p := s.page.Timeout(timeout)
	if pattern == "" {
		return p.Element(selector)
	}
	return p.ElementR(selector, pattern)
}

func (s *Session) locateVisible(timeout time.Duration, selector, pattern string) bool {
	el, err := s.locate(timeout, selector, pattern)
	if err != nil {
		return false
	}
	v, err := el.Visible()
	return err == nil && v
}

func clickElement(el *rod.Element) error {
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (s *Session) pressEscape() {
	_ = s.page.Keyboard.Press(input.Escape)
}
