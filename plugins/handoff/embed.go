// Package handoff embeds the handoff Claude Code plugin so it can be validated
// and installed without a checkout of this repository.
package handoff

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed .claude-plugin/plugin.json commands/*.md README.md
var pluginFiles embed.FS

// Name is the plugin name declared in the manifest.
const Name = "handoff"

// FS returns the embedded plugin rooted at the plugin directory.
func FS() fs.FS {
	return pluginFiles
}

// Install writes the embedded plugin to destDir. Existing files are left
// untouched unless force is set.
func Install(destDir string, force bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(pluginFiles, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		dest := filepath.Join(destDir, filepath.FromSlash(path))
		if _, statErr := os.Stat(dest); statErr == nil && !force {
			return nil
		}

		content, err := fs.ReadFile(pluginFiles, path)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(dest, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		written = append(written, path)
		return nil
	})
	if err != nil {
		return written, err
	}

	return written, nil
}
