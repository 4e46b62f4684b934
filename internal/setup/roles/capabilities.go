package roles

import "emberctl/internal/api"

// Capability describes one permission flag for pickers and summaries.
type Capability struct {
	Key   string
	Label string
	Get   func(api.Permissions) bool
	Set   func(*api.Permissions, bool)
}

// Capabilities enumerates every permission flag in wire order. The set
// is fixed; adding a flag means touching this table and the wire type
// together.
func Capabilities() []Capability {
	return []Capability{
		{"canCreateServer", "Create servers", func(p api.Permissions) bool { return p.CanCreateServer }, func(p *api.Permissions, v bool) { p.CanCreateServer = v }},
		{"canStartServer", "Start servers", func(p api.Permissions) bool { return p.CanStartServer }, func(p *api.Permissions, v bool) { p.CanStartServer = v }},
		{"canStopServer", "Stop servers", func(p api.Permissions) bool { return p.CanStopServer }, func(p *api.Permissions, v bool) { p.CanStopServer = v }},
		{"canRestartServer", "Restart servers", func(p api.Permissions) bool { return p.CanRestartServer }, func(p *api.Permissions, v bool) { p.CanRestartServer = v }},
		{"canDeleteServer", "Delete servers", func(p api.Permissions) bool { return p.CanDeleteServer }, func(p *api.Permissions, v bool) { p.CanDeleteServer = v }},
		{"canEditConfig", "Edit server config", func(p api.Permissions) bool { return p.CanEditConfig }, func(p *api.Permissions, v bool) { p.CanEditConfig = v }},
		{"canEditFiles", "Edit server files", func(p api.Permissions) bool { return p.CanEditFiles }, func(p *api.Permissions, v bool) { p.CanEditFiles = v }},
		{"canInstallMods", "Install mods", func(p api.Permissions) bool { return p.CanInstallMods }, func(p *api.Permissions, v bool) { p.CanInstallMods = v }},
		{"canCreateBackup", "Create backups", func(p api.Permissions) bool { return p.CanCreateBackup }, func(p *api.Permissions, v bool) { p.CanCreateBackup = v }},
		{"canRestoreBackup", "Restore backups", func(p api.Permissions) bool { return p.CanRestoreBackup }, func(p *api.Permissions, v bool) { p.CanRestoreBackup = v }},
		{"canDeleteBackup", "Delete backups", func(p api.Permissions) bool { return p.CanDeleteBackup }, func(p *api.Permissions, v bool) { p.CanDeleteBackup = v }},
		{"canViewLogs", "View logs", func(p api.Permissions) bool { return p.CanViewLogs }, func(p *api.Permissions, v bool) { p.CanViewLogs = v }},
		{"canViewMetrics", "View metrics", func(p api.Permissions) bool { return p.CanViewMetrics }, func(p *api.Permissions, v bool) { p.CanViewMetrics = v }},
		{"canViewConsole", "View console", func(p api.Permissions) bool { return p.CanViewConsole }, func(p *api.Permissions, v bool) { p.CanViewConsole = v }},
		{"canExecuteCommands", "Execute commands", func(p api.Permissions) bool { return p.CanExecuteCommands }, func(p *api.Permissions, v bool) { p.CanExecuteCommands = v }},
		{"canManageMembers", "Manage members", func(p api.Permissions) bool { return p.CanManageMembers }, func(p *api.Permissions, v bool) { p.CanManageMembers = v }},
		{"canManageRoles", "Manage roles", func(p api.Permissions) bool { return p.CanManageRoles }, func(p *api.Permissions, v bool) { p.CanManageRoles = v }},
		{"canManageSettings", "Manage settings", func(p api.Permissions) bool { return p.CanManageSettings }, func(p *api.Permissions, v bool) { p.CanManageSettings = v }},
	}
}

// EnabledKeys returns the keys of every enabled capability.
func EnabledKeys(p api.Permissions) []string {
	var keys []string
	for _, c := range Capabilities() {
		if c.Get(p) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// FromKeys builds a Permissions record with exactly the given
// capabilities enabled. Unknown keys are ignored.
func FromKeys(keys []string) api.Permissions {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}

	var p api.Permissions
	for _, c := range Capabilities() {
		if set[c.Key] {
			c.Set(&p, true)
		}
	}
	return p
}
