package cli

import (
	"fmt"
	"os"

	"github.com/andywolf/handoff/internal/plugin"
	"github.com/andywolf/handoff/plugins/handoff"
)

// embeddedSource labels reports for the plugin compiled into the binary.
const embeddedSource = "embedded:" + handoff.Name

// pluginDir returns the directory named on the command line, else the
// configured one. Empty means the embedded plugin.
func pluginDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return appConfig.Plugin.Dir
}

// openBundle loads the plugin under test and a label for reports.
func openBundle(dir string) (*plugin.Bundle, string, error) {
	if dir == "" {
		return plugin.Open(handoff.FS()), embeddedSource, nil
	}
	b, err := plugin.OpenDir(dir)
	if err != nil {
		return nil, "", err
	}
	return b, dir, nil
}

// materialize returns a directory holding the plugin for --plugin-dir. The
// embedded plugin is written to a temporary directory that cleanup removes.
func materialize(dir string) (string, func(), error) {
	if dir != "" {
		return dir, func() {}, nil
	}

	tmp, err := os.MkdirTemp("", "handoff-plugin-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create plugin directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	if _, err := handoff.Install(tmp, true); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to install embedded plugin: %w", err)
	}
	return tmp, cleanup, nil
}
