package internal

import (
	"os"
	"path/filepath"
)

const DirName = ".semcache"

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

type Scope struct {
	Type      ScopeType
	Path      string // working directory root
	CachePath string // .semcache directory path
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.CachePath, "config.yaml")
}

func (s Scope) SnapshotPath() string {
	return filepath.Join(s.CachePath, SnapshotFilename)
}

// HistoryPath is the git worktree used by the git persistence backend.
func (s Scope) HistoryPath() string {
	return filepath.Join(s.CachePath, "history")
}

func (s Scope) DBPath() string {
	return filepath.Join(s.CachePath, "semcache.db")
}

// Initialized reports whether the scope's cache directory exists.
func (s Scope) Initialized() bool {
	info, err := os.Stat(s.CachePath)
	return err == nil && info.IsDir()
}

func ProjectScope(dir string) Scope {
	return Scope{Type: ScopeProject, Path: dir, CachePath: filepath.Join(dir, DirName)}
}

type ScopeResolver struct {
	homeDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{
		Type:      ScopeGlobal,
		Path:      r.homeDir,
		CachePath: filepath.Join(r.homeDir, DirName),
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		if scope := ProjectScope(dir); scope.Initialized() {
			return scope, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the scope named by explicit, falling back to the nearest
// project scope and then the global one.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}
