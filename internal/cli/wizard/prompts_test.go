package wizard

import (
	"testing"
)

func TestPermissionModes(t *testing.T) {
	if PermissionModes[0] != "bypassPermissions" {
		t.Errorf("default permission mode should be offered first, got %q", PermissionModes[0])
	}
}
