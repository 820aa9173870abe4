// Package plugin loads a plugin directory into a Bundle: manifest, slash
// commands and README. Missing or malformed pieces are recorded on the
// bundle so structural checks can report them.
package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/andywolf/handoff/internal/command"
	"github.com/andywolf/handoff/internal/manifest"
)

// ReadmeFile is the README path relative to the plugin root.
const ReadmeFile = "README.md"

// Bundle is a loaded plugin.
type Bundle struct {
	FS   fs.FS
	Root string // directory the bundle was opened from, empty for embedded bundles

	Manifest    *manifest.Manifest
	ManifestErr error

	Commands       []*command.Command
	CommandErrs    map[string]error
	CommandsDirErr error

	Readme    string
	ReadmeErr error
}

// OpenDir loads the plugin rooted at dir.
func OpenDir(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("plugin path %s is not a directory", dir)
	}

	b := Open(os.DirFS(dir))
	b.Root = dir
	return b, nil
}

// Open loads the plugin rooted at fsys.
func Open(fsys fs.FS) *Bundle {
	b := &Bundle{FS: fsys, CommandErrs: make(map[string]error)}

	b.Manifest, b.ManifestErr = manifest.Load(fsys, manifest.Path)

	commands, failures, err := command.LoadDir(fsys, command.Dir)
	b.Commands = commands
	b.CommandsDirErr = err
	for p, ferr := range failures {
		b.CommandErrs[p] = ferr
	}

	data, err := fs.ReadFile(fsys, ReadmeFile)
	if err != nil {
		b.ReadmeErr = err
	} else {
		b.Readme = string(data)
	}

	return b
}

// Command returns the command with the given name.
func (b *Bundle) Command(name string) (*command.Command, bool) {
	for _, c := range b.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// CommandPath returns the document path for a command name.
func CommandPath(name string) string {
	return command.Dir + "/" + name + ".md"
}

// MetadataEntries lists the names in the .claude-plugin directory, sorted.
func (b *Bundle) MetadataEntries() ([]string, error) {
	entries, err := fs.ReadDir(b.FS, manifest.Dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Stat reports whether p exists in the bundle and whether it is a directory.
func (b *Bundle) Stat(p string) (exists, isDir bool, err error) {
	info, err := fs.Stat(b.FS, p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, info.IsDir(), nil
}

// ReadFile reads p from the bundle.
func (b *Bundle) ReadFile(p string) (string, error) {
	data, err := fs.ReadFile(b.FS, p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
