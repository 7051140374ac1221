package toolexec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var binarySuffixes = map[string]bool{
	".o": true, ".a": true, ".so": true, ".dll": true, ".exe": true,
}

// Searcher finds candidate context lines for the patch author.
// It prefers ripgrep and falls back to a plain substring walk.
type Searcher struct {
	FS     afero.Fs
	Runner *Runner
}

// Search returns "path:line:text" matches for term under root.
func (s *Searcher) Search(ctx context.Context, term, root string) string {
	if s.Runner != nil {
		if _, err := exec.LookPath("rg"); err == nil {
			res := s.Runner.Run(ctx, []string{"rg", "-n", term}, root)
			if res.ExitCode == 0 || res.Stdout != "" {
				return res.Stdout
			}
		}
	}
	return s.walk(term, root)
}

func (s *Searcher) walk(term, root string) string {
	var matches []string
	afero.Walk(s.FS, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || binarySuffixes[filepath.Ext(path)] {
			return nil
		}
		b, err := afero.ReadFile(s.FS, path)
		if err != nil {
			return nil
		}
		for i, line := range strings.Split(string(b), "\n") {
			if strings.Contains(line, term) {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", path, i+1, line))
			}
		}
		return nil
	})
	return strings.Join(matches, "\n")
}
