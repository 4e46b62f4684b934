package roles

import (
	"testing"

	"emberctl/internal/api"
)

func TestDefaultFor_AdminLike(t *testing.T) {
	perms := DefaultFor("Moderator")

	if perms != AllEnabled() {
		t.Errorf("Moderator should seed fully enabled, got %+v", perms)
	}
}

func TestDefaultFor_ReadOnly(t *testing.T) {
	perms := DefaultFor("Member")

	if !perms.CanViewLogs {
		t.Error("Member should be able to view logs")
	}
	if !perms.CanViewMetrics {
		t.Error("Member should be able to view metrics")
	}

	// Everything else must be off.
	perms.CanViewLogs = false
	perms.CanViewMetrics = false
	if perms != (api.Permissions{}) {
		t.Errorf("Member should have no other capabilities, got %+v", perms)
	}
}

func TestIsAdminLike(t *testing.T) {
	cases := map[string]bool{
		"Admin":          true,
		"administrator":  true,
		"Server Owner":   true,
		"Mod":            true,
		"Moderator":      true,
		"Staff Team":     true,
		"Member":         false,
		"VIP":            false,
		"Booster":        false,
		"@everyone":      false,
		"Malmo Resident": false,
	}

	for name, want := range cases {
		if got := IsAdminLike(name); got != want {
			t.Errorf("IsAdminLike(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSeed_PreservesExisting(t *testing.T) {
	guildRoles := []api.Role{
		{ID: "r1", Name: "Admin", Position: 2},
		{ID: "r2", Name: "Member", Position: 1},
	}

	custom := ReadOnly()
	custom.CanViewConsole = true

	m := Matrix{"r1": custom}
	Seed(m, guildRoles)

	if m["r1"] != custom {
		t.Errorf("seed must not overwrite existing entry, got %+v", m["r1"])
	}
	if m["r2"] != ReadOnly() {
		t.Errorf("r2 should seed read-only, got %+v", m["r2"])
	}
}

func TestComplete(t *testing.T) {
	guildRoles := []api.Role{
		{ID: "r1", Name: "Admin", Position: 2},
		{ID: "r2", Name: "Member", Position: 1},
	}

	m := Matrix{"r1": AllEnabled()}
	if err := Complete(m, guildRoles); err == nil {
		t.Error("expected error while a role lacks an entry")
	}

	Seed(m, guildRoles)
	if err := Complete(m, guildRoles); err != nil {
		t.Errorf("matrix should be complete after seeding: %v", err)
	}
}

func TestEntries_OrderedByPosition(t *testing.T) {
	guildRoles := []api.Role{
		{ID: "low", Name: "Member", Position: 1},
		{ID: "high", Name: "Admin", Position: 5},
		{ID: "mid", Name: "Builder", Position: 3},
	}

	m := Matrix{}
	Seed(m, guildRoles)

	entries := Entries(m, guildRoles)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if entries[i].RoleID != id {
			t.Errorf("entry %d should be %s, got %s", i, id, entries[i].RoleID)
		}
	}
}

func TestCapabilities_CoverEveryFlag(t *testing.T) {
	caps := Capabilities()
	if got := len(caps); got != 18 {
		t.Fatalf("capabilities = %d, want 18", got)
	}

	all := AllEnabled()
	for _, c := range caps {
		if !c.Get(all) {
			t.Errorf("capability %q not enabled in AllEnabled", c.Key)
		}
	}
}

func TestEnabledKeys_RoundTrip(t *testing.T) {
	p := ReadOnly()

	keys := EnabledKeys(p)
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want the two read-only flags", keys)
	}

	if got := FromKeys(keys); got != p {
		t.Errorf("FromKeys(EnabledKeys(p)) = %+v, want %+v", got, p)
	}
}

func TestFromKeys_IgnoresUnknown(t *testing.T) {
	p := FromKeys([]string{"canViewLogs", "notACapability"})
	if !p.CanViewLogs {
		t.Error("expected canViewLogs enabled")
	}
	if p != (FromKeys([]string{"canViewLogs"})) {
		t.Error("unknown key should change nothing")
	}
}
