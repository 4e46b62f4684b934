package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"emberctl/internal/api"
	"emberctl/internal/logger"
	"emberctl/internal/setup/guilds"
	"emberctl/internal/setup/oauth"
	"emberctl/internal/setup/roles"
	"emberctl/internal/setup/session"
	"emberctl/internal/setup/status"
	"emberctl/internal/setup/wizard"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/pkg/browser"
)

// ModelConfig wires the setup wizard UI.
type ModelConfig struct {
	Client *api.Client
	Store  *session.Store
	Status *status.Fetcher
	Log    *logger.Logger

	// CallbackAddr is the loopback address for the OAuth redirect
	// listener; empty picks an ephemeral port.
	CallbackAddr string
	NoBrowser    bool

	// DashboardURL opens after the completion screen.
	DashboardURL  string
	RedirectDelay time.Duration
}

// stepPhase tracks the async state of the current step.
type stepPhase int

const (
	phaseIdle stepPhase = iota
	phaseLoading
	phaseReady
	phaseSubmitting
)

// Messages produced by step commands.

type authURLMsg struct{ url string }

type authDoneMsg struct {
	resp *api.CallbackResponse
	err  error
}

type guildsLoadedMsg struct {
	guilds []api.Guild
	err    error
}

type rolesLoadedMsg struct {
	resp *api.GuildRolesResponse
	err  error
}

type submitDoneMsg struct{ err error }

type redirectMsg struct{}

// Model is the setup wizard program.
type Model struct {
	cfg        ModelConfig
	controller *wizard.Controller
	resolver   *oauth.Resolver
	fetcher    *guilds.Fetcher
	theme      *Theme
	meta       map[wizard.StepID]StepMeta
	log        *logger.Logger

	spin   spinner.Model
	width  int
	height int

	phase stepPhase
	// stepErr is shown inline near the step's control; it never resets
	// user input and never blocks navigation.
	stepErr string

	// domains
	domainsForm *huh.Form
	webDomain   string
	apiDomain   string

	// discord
	authURL    string
	authCancel context.CancelFunc
	listener   *oauth.Listener

	// guild
	guildList     []api.Guild
	guildForm     *huh.Form
	selectedGuild string
	stepCancel    context.CancelFunc

	// roles
	roleList  []api.Role
	guildName string
	matrix    roles.Matrix
	rolesForm *huh.Form
	roleSel   map[string]*[]string
	orgName   string

	quitting bool
	err      error
}

// NewModel builds the wizard model and hydrates any resumable session.
func NewModel(cfg ModelConfig) (*Model, error) {
	meta, err := loadStepMeta()
	if err != nil {
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	// A nil *status.Fetcher must not end up as a non-nil interface
	// value, or the controller's refresh guard cannot see it.
	var refresher wizard.Refresher
	if cfg.Status != nil {
		refresher = cfg.Status
	}

	dashboard := cfg.DashboardURL
	controller := wizard.NewController(wizard.Config{
		Store:         cfg.Store,
		Refresher:     refresher,
		Log:           log,
		RedirectDelay: cfg.RedirectDelay,
		Redirect: func() {
			if dashboard != "" {
				if err := browser.OpenURL(dashboard); err != nil {
					log.Warn("could not open dashboard", "error", err)
				}
			}
		},
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = DefaultTheme().Focused

	return &Model{
		cfg:        cfg,
		controller: controller,
		resolver:   oauth.NewResolver(cfg.Client, log),
		fetcher:    guilds.NewFetcher(cfg.Client, log),
		theme:      DefaultTheme(),
		meta:       meta,
		log:        log,
		spin:       sp,
		matrix:     roles.Matrix{},
		roleSel:    map[string]*[]string{},
	}, nil
}

// Err returns the terminal error, if the wizard aborted.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.enterStep())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)

	case authURLMsg:
		m.authURL = msg.url
		return m, nil

	case authDoneMsg:
		return m.updateAuthDone(msg)

	case guildsLoadedMsg:
		return m.updateGuildsLoaded(msg)

	case rolesLoadedMsg:
		return m.updateRolesLoaded(msg)

	case submitDoneMsg:
		return m.updateSubmitDone(msg)

	case redirectMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m.updateForm(msg)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		// Abandon; the persisted session survives for a later resume.
		m.cancelInflight()
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.controller.Index() == 0 {
			m.cancelInflight()
			m.quitting = true
			return m, tea.Quit
		}
		m.cancelInflight()
		m.controller.Retreat()
		return m, m.enterStep()

	case "enter":
		switch m.controller.Current().ID {
		case wizard.StepWelcome:
			m.controller.Advance(context.Background())
			return m, m.enterStep()
		case wizard.StepDiscord:
			// Resumed session: the token is still good, skip sign-in.
			if m.phase == phaseIdle && m.controller.Session().HasToken() {
				m.controller.Advance(context.Background())
				return m, m.enterStep()
			}
		case wizard.StepComplete:
			m.quitting = true
			return m, tea.Quit
		}

	case "r":
		// Retry affordance for failed loads, and re-auth on a resumed
		// session.
		if m.controller.Current().ID == wizard.StepDiscord &&
			m.phase == phaseIdle && m.controller.Session().HasToken() {
			m.resolver.Reset()
			return m, m.startDiscordAuth()
		}
		if m.phase == phaseReady && m.stepErr != "" {
			// Only while no form is active; otherwise "r" is input.
			switch m.controller.Current().ID {
			case wizard.StepGuild:
				if m.guildForm == nil {
					return m, m.loadGuilds()
				}
			case wizard.StepRoles:
				if m.rolesForm == nil {
					return m, m.loadRoles()
				}
			case wizard.StepDiscord:
				return m, m.startDiscordAuth()
			}
		}
	}

	return m.updateForm(msg)
}

// updateForm forwards messages to the active step form.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var form **huh.Form
	switch m.controller.Current().ID {
	case wizard.StepDomains:
		form = &m.domainsForm
	case wizard.StepGuild:
		form = &m.guildForm
	case wizard.StepRoles:
		form = &m.rolesForm
	default:
		return m, nil
	}
	if *form == nil || m.phase == phaseSubmitting {
		return m, nil
	}

	updated, cmd := (*form).Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		*form = f
	}

	if (*form).State == huh.StateCompleted {
		return m.submitStep()
	}

	return m, cmd
}

// submitStep runs the current step's mutation once its form completes.
func (m *Model) submitStep() (tea.Model, tea.Cmd) {
	m.phase = phaseSubmitting
	m.stepErr = ""

	switch m.controller.Current().ID {
	case wizard.StepDomains:
		web, apiDomain := m.webDomain, m.apiDomain
		client := m.cfg.Client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return submitDoneMsg{err: client.ConfigureDomains(ctx, web, apiDomain)}
		}

	case wizard.StepGuild:
		guildID := m.selectedGuild
		installer := ""
		if u := m.controller.Session().User; u != nil {
			installer = u.ID
		}
		client := m.cfg.Client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return submitDoneMsg{err: client.SelectGuild(ctx, guildID, installer)}
		}

	case wizard.StepRoles:
		for roleID, sel := range m.roleSel {
			m.matrix[roleID] = roles.FromKeys(*sel)
		}
		if err := roles.Complete(m.matrix, m.roleList); err != nil {
			m.phase = phaseReady
			m.stepErr = err.Error()
			return m, nil
		}

		perms := m.rolePermissions()
		guildID := m.controller.Session().SelectedGuildID
		orgName := m.orgName
		client := m.cfg.Client
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if err := client.ConfigureRoles(ctx, guildID, perms); err != nil {
				return submitDoneMsg{err: err}
			}
			return submitDoneMsg{err: client.Complete(ctx, orgName, perms)}
		}
	}

	m.phase = phaseReady
	return m, nil
}

func (m *Model) updateSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if api.IsCanceled(msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.phase = phaseReady
		m.stepErr = errorMessage(msg.err)
		return m, m.reopenForm()
	}

	if m.controller.Current().ID == wizard.StepGuild {
		if err := m.controller.SelectGuild(m.selectedGuild); err != nil {
			m.log.Warn("failed to persist guild selection", "error", err)
		}
	}

	m.controller.Advance(context.Background())
	return m, m.enterStep()
}

func (m *Model) updateAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	if api.IsCanceled(msg.err) || msg.err == oauth.ErrExchangeInFlight {
		// A cancelled or redundant exchange mutates nothing.
		return m, nil
	}

	// The sign-in attempt is over either way; release its context so
	// the URL-forwarding goroutine unblocks, and drop the listener.
	m.cancelInflight()

	if msg.err != nil {
		m.phase = phaseReady
		m.stepErr = errorMessage(msg.err) + " Press r to restart the sign-in."
		m.resolver.Reset()
		return m, nil
	}

	if err := m.controller.InjectSession(msg.resp.SessionToken, &msg.resp.User, msg.resp.GuildID); err != nil {
		m.log.Warn("failed to persist session", "error", err)
	}

	m.controller.Advance(context.Background())
	return m, m.enterStep()
}

func (m *Model) updateGuildsLoaded(msg guildsLoadedMsg) (tea.Model, tea.Cmd) {
	if api.IsCanceled(msg.err) || msg.err == guilds.ErrFetchInFlight {
		return m, nil
	}
	if msg.err != nil {
		m.phase = phaseReady
		m.stepErr = guilds.FormatError(msg.err) + " Press r to retry."
		m.guildForm = nil
		return m, nil
	}

	m.guildList = msg.guilds
	m.phase = phaseReady
	m.stepErr = ""
	return m, m.buildGuildForm()
}

func (m *Model) updateRolesLoaded(msg rolesLoadedMsg) (tea.Model, tea.Cmd) {
	if api.IsCanceled(msg.err) {
		return m, nil
	}
	if msg.err != nil {
		m.phase = phaseReady
		m.stepErr = errorMessage(msg.err) + " Press r to retry."
		m.rolesForm = nil
		return m, nil
	}

	m.roleList = msg.resp.Roles
	m.guildName = msg.resp.GuildName
	roles.Seed(m.matrix, m.roleList)
	m.phase = phaseReady
	m.stepErr = ""
	return m, m.buildRolesForm()
}

// enterStep prepares the newly current step: forms, loads, timers.
func (m *Model) enterStep() tea.Cmd {
	m.phase = phaseIdle
	m.stepErr = ""

	switch m.controller.Current().ID {
	case wizard.StepDomains:
		return m.buildDomainsForm()

	case wizard.StepDiscord:
		if m.controller.Session().HasToken() {
			return nil
		}
		return m.startDiscordAuth()

	case wizard.StepGuild:
		if !m.controller.CanRun(m.controller.Current()) {
			return nil
		}
		m.fetcher.Reset()
		return m.loadGuilds()

	case wizard.StepRoles:
		if !m.controller.CanRun(m.controller.Current()) {
			return nil
		}
		return m.loadRoles()

	case wizard.StepComplete:
		delay := m.cfg.RedirectDelay
		if delay <= 0 {
			delay = 3 * time.Second
		}
		return tea.Tick(delay+time.Second, func(time.Time) tea.Msg {
			return redirectMsg{}
		})
	}

	return nil
}

func (m *Model) buildDomainsForm() tea.Cmd {
	m.phase = phaseReady
	m.domainsForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Panel domain").
				Description("Where players and staff open the panel").
				Placeholder("https://panel.example.com").
				Validate(validateAbsoluteURL).
				Value(&m.webDomain),

			huh.NewInput().
				Title("API domain").
				Description("Where game servers reach the panel API").
				Placeholder("https://api.example.com").
				Validate(validateAbsoluteURL).
				Value(&m.apiDomain),
		),
	).WithTheme(HuhTheme())
	return m.domainsForm.Init()
}

func (m *Model) startDiscordAuth() tea.Cmd {
	m.phase = phaseLoading
	m.stepErr = ""
	m.authURL = ""

	listener, err := oauth.NewListener(m.cfg.CallbackAddr)
	if err != nil {
		m.phase = phaseReady
		m.stepErr = errorMessage(err)
		return nil
	}
	m.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	m.authCancel = cancel

	// The URL surfaces in the view rather than on stdout; bubbletea
	// owns the terminal while the wizard runs.
	urlCh := make(chan string, 2)
	flow := &oauth.Flow{
		Client:    m.cfg.Client,
		Listener:  listener,
		Log:       m.log,
		NoBrowser: m.cfg.NoBrowser,
		OpenURL: func(u string) error {
			urlCh <- u
			return browser.OpenURL(u)
		},
		PrintURL: func(u string) {
			urlCh <- u
		},
	}

	resolver := m.resolver
	authCmd := func() tea.Msg {
		defer listener.Close()
		cb, err := flow.StartAuth(ctx)
		if err != nil {
			return authDoneMsg{err: err}
		}
		resp, err := resolver.Resolve(ctx, cb.Code, cb.State, cb.GuildID)
		return authDoneMsg{resp: resp, err: err}
	}
	urlCmd := func() tea.Msg {
		select {
		case u := <-urlCh:
			return authURLMsg{url: u}
		case <-ctx.Done():
			return nil
		}
	}

	return tea.Batch(authCmd, urlCmd)
}

func (m *Model) loadGuilds() tea.Cmd {
	m.phase = phaseLoading
	m.stepErr = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.stepCancel = cancel

	fetcher := m.fetcher
	token := m.controller.Session().SessionToken
	return func() tea.Msg {
		list, err := fetcher.Fetch(ctx, token)
		return guildsLoadedMsg{guilds: list, err: err}
	}
}

func (m *Model) loadRoles() tea.Cmd {
	m.phase = phaseLoading
	m.stepErr = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.stepCancel = cancel

	client := m.cfg.Client
	sess := m.controller.Session()
	token, guildID := sess.SessionToken, sess.SelectedGuildID
	return func() tea.Msg {
		resp, err := client.GuildRoles(ctx, token, guildID)
		return rolesLoadedMsg{resp: resp, err: err}
	}
}

func (m *Model) buildGuildForm() tea.Cmd {
	if len(m.guildList) == 0 {
		// No administrable servers listed; fall back to a hand-entered
		// snowflake.
		m.guildForm = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Server ID").
					Description("No servers found. Paste the ID of the Discord server to manage").
					Placeholder("123456789012345678").
					Validate(guilds.ValidateManualID).
					Value(&m.selectedGuild),
			),
		).WithTheme(HuhTheme())
		return m.guildForm.Init()
	}

	options := make([]huh.Option[string], 0, len(m.guildList))
	for _, g := range m.guildList {
		label := g.Name
		if g.Owner {
			label += " (owner)"
		}
		options = append(options, huh.NewOption(label, g.ID))
	}

	m.guildForm = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Discord server").
				Description("The server this panel will manage").
				Options(options...).
				Value(&m.selectedGuild),
		),
	).WithTheme(HuhTheme())
	return m.guildForm.Init()
}

func (m *Model) buildRolesForm() tea.Cmd {
	capOptions := func(selected api.Permissions) []huh.Option[string] {
		opts := make([]huh.Option[string], 0, len(roles.Capabilities()))
		for _, c := range roles.Capabilities() {
			opts = append(opts, huh.NewOption(c.Label, c.Key).Selected(c.Get(selected)))
		}
		return opts
	}

	groups := make([]*huh.Group, 0, len(m.roleList)+1)
	for _, entry := range roles.Entries(m.matrix, m.roleList) {
		sel := new([]string)
		*sel = roles.EnabledKeys(entry.Permissions)
		m.roleSel[entry.RoleID] = sel

		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title(entry.RoleName).
				Description("Capabilities for this role").
				Options(capOptions(entry.Permissions)...).
				Value(sel),
		))
	}

	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Organization name").
			Description("Shown in the panel header and invites").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("organization name is required")
				}
				return nil
			}).
			Value(&m.orgName),

		huh.NewConfirm().
			Title("Finish setup?").
			Affirmative("Finish").
			Negative("Back"),
	))

	m.rolesForm = huh.NewForm(groups...).WithTheme(HuhTheme())
	return m.rolesForm.Init()
}

func (m *Model) rolePermissions() []api.RolePermission {
	return roles.Entries(m.matrix, m.roleList)
}

func (m *Model) cancelInflight() {
	if m.authCancel != nil {
		m.authCancel()
		m.authCancel = nil
	}
	if m.stepCancel != nil {
		m.stepCancel()
		m.stepCancel = nil
	}
	if m.listener != nil {
		m.listener.Close()
		m.listener = nil
	}
}

// reopenForm puts a completed form back in edit mode after a failed
// submit, preserving everything the user typed.
func (m *Model) reopenForm() tea.Cmd {
	switch m.controller.Current().ID {
	case wizard.StepDomains:
		return m.buildDomainsForm()
	case wizard.StepGuild:
		return m.buildGuildForm()
	case wizard.StepRoles:
		return m.buildRolesForm()
	}
	return nil
}

func validateAbsoluteURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

// errorMessage prefers the backend-provided message when one exists.
func errorMessage(err error) string {
	if apiErr := api.AsError(err); apiErr != nil {
		return apiErr.Error()
	}
	return err.Error()
}

// RunSetup runs the interactive wizard to completion.
func RunSetup(cfg ModelConfig) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(*Model); ok {
		return fm.Err()
	}
	return nil
}
