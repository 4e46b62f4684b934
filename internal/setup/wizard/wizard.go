// Package wizard holds the setup step registry and the controller that
// walks through it.
package wizard

import (
	"context"
	"sync"
	"time"

	"emberctl/internal/api"
	"emberctl/internal/logger"
	"emberctl/internal/setup/session"

	"github.com/google/uuid"
)

// StepID identifies a wizard step.
type StepID string

const (
	StepWelcome  StepID = "welcome"
	StepDomains  StepID = "domains"
	StepDiscord  StepID = "discord"
	StepGuild    StepID = "guild"
	StepRoles    StepID = "roles"
	StepComplete StepID = "complete"
)

// Need names a session prerequisite a step declares.
type Need string

const (
	NeedToken Need = "session-token"
	NeedUser  Need = "discord-user"
	NeedGuild Need = "guild-id"
)

// Step describes one entry in the ordered setup flow.
type Step struct {
	ID    StepID
	Title string
	Needs []Need
}

// Steps returns the ordered step registry.
func Steps() []Step {
	return []Step{
		{ID: StepWelcome, Title: "Welcome"},
		{ID: StepDomains, Title: "Domains"},
		{ID: StepDiscord, Title: "Sign in with Discord"},
		{ID: StepGuild, Title: "Choose your server", Needs: []Need{NeedToken, NeedUser}},
		{ID: StepRoles, Title: "Role permissions", Needs: []Need{NeedToken, NeedUser, NeedGuild}},
		{ID: StepComplete, Title: "All set"},
	}
}

// Refresher re-probes the backend's setup status.
type Refresher interface {
	Refresh(ctx context.Context) *api.SetupStatus
}

// Config wires a Controller.
type Config struct {
	Store     *session.Store
	Refresher Refresher
	Log       *logger.Logger

	// RedirectDelay is how long the completion screen stays up before
	// Redirect fires.
	RedirectDelay time.Duration
	// Redirect opens the dashboard once setup finished.
	Redirect func()
}

// Controller owns the step cursor and the wizard session. It decides
// where the flow goes next but never blocks a step from rendering; a
// step whose prerequisites are missing shows its fallback instead.
type Controller struct {
	steps     []Step
	store     *session.Store
	refresher Refresher
	log       *logger.Logger

	redirectDelay time.Duration
	redirect      func()

	// runID ties one wizard run together across log lines.
	runID string

	mu    sync.Mutex
	index int
	sess  *session.Session
}

// NewController builds a Controller, hydrating any session a previous
// run left behind.
func NewController(cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	delay := cfg.RedirectDelay
	if delay <= 0 {
		delay = 3 * time.Second
	}

	c := &Controller{
		steps:         Steps(),
		store:         cfg.Store,
		refresher:     cfg.Refresher,
		log:           log,
		redirectDelay: delay,
		redirect:      cfg.Redirect,
		runID:         uuid.NewString(),
		sess:          &session.Session{},
	}

	if cfg.Store != nil {
		c.sess = cfg.Store.Hydrate()
	}

	log.Debug("wizard run started", "run_id", c.runID, "resumed", c.sess.HasToken())

	return c
}

// Index returns the current step position.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the current step.
func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.index]
}

// Session returns the wizard session.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Advance moves the cursor forward. The guild step is skipped when a
// server was already picked during sign-in. Reaching the terminal step
// clears the persisted session and schedules the dashboard redirect;
// any transition kicks a background status refresh.
func (c *Controller) Advance(ctx context.Context) {
	c.mu.Lock()

	if c.index >= len(c.steps)-1 {
		c.mu.Unlock()
		return
	}

	c.index++
	if c.steps[c.index].ID == StepGuild && c.sess.SelectedGuildID != "" {
		c.index++
	}
	terminal := c.steps[c.index].ID == StepComplete
	c.mu.Unlock()

	c.fireRefresh(ctx)

	if terminal {
		c.finish()
	}
}

// Retreat moves the cursor back one step, floored at zero. Going back
// never touches the backend.
func (c *Controller) Retreat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index > 0 {
		c.index--
	}
}

// InjectSession lands the outcome of the Discord sign-in in the wizard
// session and persists it. A guild picked during authorization marks
// the guild step satisfied, so the next Advance lands on roles.
func (c *Controller) InjectSession(token string, user *api.DiscordUser, guildID string) error {
	c.mu.Lock()
	c.sess.SessionToken = token
	c.sess.User = user
	if guildID != "" {
		c.sess.SelectedGuildID = guildID
	}
	sess := c.sess
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Persist(sess)
}

// SelectGuild records the chosen server and persists it.
func (c *Controller) SelectGuild(guildID string) error {
	c.mu.Lock()
	c.sess.SelectedGuildID = guildID
	sess := c.sess
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Persist(sess)
}

// CanRun reports whether every prerequisite the step declares is
// present in the session.
func (c *Controller) CanRun(step Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, need := range step.Needs {
		switch need {
		case NeedToken:
			if c.sess.SessionToken == "" {
				return false
			}
		case NeedUser:
			if c.sess.User == nil {
				return false
			}
		case NeedGuild:
			if c.sess.SelectedGuildID == "" {
				return false
			}
		}
	}
	return true
}

func (c *Controller) fireRefresh(ctx context.Context) {
	if c.refresher == nil {
		return
	}
	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		c.refresher.Refresh(rctx)
	}()
}

func (c *Controller) finish() {
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.log.Warn("failed to clear session after completion", "run_id", c.runID, logger.WithError(err))
		}
	}

	c.mu.Lock()
	c.sess = &session.Session{}
	c.mu.Unlock()

	if c.redirect != nil {
		time.AfterFunc(c.redirectDelay, c.redirect)
	}
}
