// Package roles builds the role permission matrix configured during the
// roles step.
//
// The defaults seeded here are a convenience heuristic for the operator,
// not a security boundary: the backend enforces the matrix it is given.
package roles

import (
	"fmt"
	"sort"
	"strings"

	"emberctl/internal/api"
)

// adminLikePatterns are role-name fragments that mark a role as
// administrative. Matching is case-insensitive substring.
var adminLikePatterns = []string{
	"admin",
	"owner",
	"mod",
	"staff",
}

// Matrix maps a Discord role id to its configured capability flags.
type Matrix map[string]api.Permissions

// AllEnabled returns a permission set with every capability granted.
func AllEnabled() api.Permissions {
	return api.Permissions{
		CanCreateServer:    true,
		CanStartServer:     true,
		CanStopServer:      true,
		CanRestartServer:   true,
		CanDeleteServer:    true,
		CanEditConfig:      true,
		CanEditFiles:       true,
		CanInstallMods:     true,
		CanCreateBackup:    true,
		CanRestoreBackup:   true,
		CanDeleteBackup:    true,
		CanViewLogs:        true,
		CanViewMetrics:     true,
		CanViewConsole:     true,
		CanExecuteCommands: true,
		CanManageMembers:   true,
		CanManageRoles:     true,
		CanManageSettings:  true,
	}
}

// ReadOnly returns the conservative default: log and metric visibility
// only, everything else disabled.
func ReadOnly() api.Permissions {
	return api.Permissions{
		CanViewLogs:    true,
		CanViewMetrics: true,
	}
}

// IsAdminLike reports whether a role name matches an administrative
// pattern.
func IsAdminLike(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range adminLikePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// DefaultFor seeds the default permissions for a role by name:
// admin-like roles get everything, the rest get read-only.
func DefaultFor(name string) api.Permissions {
	if IsAdminLike(name) {
		return AllEnabled()
	}
	return ReadOnly()
}

// Seed ensures every guild role has a matrix entry, seeding missing ones
// with DefaultFor. Existing entries are preserved untouched.
func Seed(m Matrix, guildRoles []api.Role) {
	for _, r := range guildRoles {
		if _, ok := m[r.ID]; !ok {
			m[r.ID] = DefaultFor(r.Name)
		}
	}
}

// Missing returns the names of guild roles that still lack a matrix
// entry, in guild position order.
func Missing(m Matrix, guildRoles []api.Role) []string {
	var missing []string
	for _, r := range sortedByPosition(guildRoles) {
		if _, ok := m[r.ID]; !ok {
			missing = append(missing, r.Name)
		}
	}
	return missing
}

// Complete checks that every guild role has an entry. The roles step may
// not finish while this returns an error.
func Complete(m Matrix, guildRoles []api.Role) error {
	missing := Missing(m, guildRoles)
	if len(missing) > 0 {
		return fmt.Errorf("roles without permissions: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Entries converts the matrix into the wire form, ordered by guild role
// position so the backend sees a stable ordering.
func Entries(m Matrix, guildRoles []api.Role) []api.RolePermission {
	entries := make([]api.RolePermission, 0, len(guildRoles))
	for _, r := range sortedByPosition(guildRoles) {
		perms, ok := m[r.ID]
		if !ok {
			continue
		}
		entries = append(entries, api.RolePermission{
			RoleID:      r.ID,
			RoleName:    r.Name,
			Permissions: perms,
		})
	}
	return entries
}

// sortedByPosition returns the roles highest-position first, matching how
// Discord displays them.
func sortedByPosition(guildRoles []api.Role) []api.Role {
	sorted := make([]api.Role, len(guildRoles))
	copy(sorted, guildRoles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})
	return sorted
}
