package api

// SetupStatus is the server-reported snapshot of setup progress. It is
// never mutated locally, only replaced wholesale by a fresh fetch.
type SetupStatus struct {
	IsComplete      bool       `json:"isComplete"`
	CurrentStep     string     `json:"currentStep"`
	Steps           SetupSteps `json:"steps"`
	SelectedGuildID string     `json:"selectedGuildId,omitempty"`
	InstallerUserID string     `json:"installerUserId,omitempty"`
}

// SetupSteps reports which setup stages the backend has recorded as done.
type SetupSteps struct {
	SystemConfigured  bool `json:"systemConfigured"`
	DiscordConfigured bool `json:"discordConfigured"`
	GuildSelected     bool `json:"guildSelected"`
	RolesConfigured   bool `json:"rolesConfigured"`
}

// DiscordUser is the authenticated Discord identity returned by the
// OAuth code exchange.
type DiscordUser struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
	Avatar        *string `json:"avatar"`
}

// Guild is a Discord server the authenticated user administers.
type Guild struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        *string `json:"icon"`
	Owner       bool    `json:"owner"`
	Permissions string  `json:"permissions"`
}

// Role is a Discord role within the selected guild.
type Role struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

// Permissions is the fixed set of capability flags a guild role can be
// granted on the panel. Enforcement happens server-side; this record is
// the client's statically exhaustive representation of the wire shape.
type Permissions struct {
	CanCreateServer    bool `json:"canCreateServer"`
	CanStartServer     bool `json:"canStartServer"`
	CanStopServer      bool `json:"canStopServer"`
	CanRestartServer   bool `json:"canRestartServer"`
	CanDeleteServer    bool `json:"canDeleteServer"`
	CanEditConfig      bool `json:"canEditConfig"`
	CanEditFiles       bool `json:"canEditFiles"`
	CanInstallMods     bool `json:"canInstallMods"`
	CanCreateBackup    bool `json:"canCreateBackup"`
	CanRestoreBackup   bool `json:"canRestoreBackup"`
	CanDeleteBackup    bool `json:"canDeleteBackup"`
	CanViewLogs        bool `json:"canViewLogs"`
	CanViewMetrics     bool `json:"canViewMetrics"`
	CanViewConsole     bool `json:"canViewConsole"`
	CanExecuteCommands bool `json:"canExecuteCommands"`
	CanManageMembers   bool `json:"canManageMembers"`
	CanManageRoles     bool `json:"canManageRoles"`
	CanManageSettings  bool `json:"canManageSettings"`
}

// RolePermission pairs a guild role with its configured capabilities for
// the configure-roles and complete mutations.
type RolePermission struct {
	RoleID      string      `json:"roleId"`
	RoleName    string      `json:"roleName"`
	Permissions Permissions `json:"permissions"`
}

// CallbackResponse is the result of exchanging an OAuth authorization code.
// GuildID is non-empty when the authorization was a bot-install consent
// that pre-selected a guild.
type CallbackResponse struct {
	SessionToken string      `json:"sessionToken"`
	User         DiscordUser `json:"user"`
	GuildID      string      `json:"guildId,omitempty"`
}

// GuildRolesResponse is the role listing for the selected guild.
type GuildRolesResponse struct {
	Roles     []Role `json:"roles"`
	GuildName string `json:"guildName"`
}

type authURLResponse struct {
	URL string `json:"url"`
}

type guildListResponse struct {
	Guilds []Guild `json:"guilds"`
}

type configureDomainsRequest struct {
	WebDomain string `json:"webDomain"`
	APIDomain string `json:"apiDomain"`
}

type listGuildsRequest struct {
	SessionToken string `json:"sessionToken"`
}

type selectGuildRequest struct {
	GuildID            string `json:"guildId"`
	InstallerDiscordID string `json:"installerDiscordId"`
}

type configureRolesRequest struct {
	GuildID         string           `json:"guildId"`
	RolePermissions []RolePermission `json:"rolePermissions"`
}

type completeRequest struct {
	OrgName         string           `json:"orgName"`
	RolePermissions []RolePermission `json:"rolePermissions"`
}

type resetRequest struct {
	ConfirmationToken string `json:"confirmationToken"`
}
