// Package paths locates the assets and data roots by probing ancestor
// directories of the working directory and the executable.
package paths

import (
	"os"
	"path/filepath"
)

// maxParents bounds the upward probe from each starting directory.
const maxParents = 7

// Roots holds the resolved engine directories. Empty fields mean the
// probe found nothing; Resolve then falls back to literal paths.
type Roots struct {
	Assets string
	Data   string
}

// Discover probes upward from the working directory and the executable
// directory for the assets and data roots.
func Discover() Roots {
	starts := startDirs()
	return Roots{
		Assets: probe(starts, "assets", scoreAssets),
		Data:   probe(starts, "Data_Files", scoreData),
	}
}

func startDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return dirs
}

// probe walks up to maxParents ancestors of each start directory looking
// for a child directory called name. Among candidates, the best score
// wins; ties go to the first found.
func probe(starts []string, name string, score func(string) int) string {
	best := ""
	bestScore := -1
	for _, start := range starts {
		dir := start
		for i := 0; i <= maxParents; i++ {
			candidate := filepath.Join(dir, name)
			if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
				if s := score(candidate); s > bestScore {
					best = candidate
					bestScore = s
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	return best
}

func scoreAssets(dir string) int {
	s := 0
	if isDir(filepath.Join(dir, "Textures")) {
		s += 2
	}
	if isDir(filepath.Join(dir, "Fonts")) {
		s++
	}
	return s
}

func scoreData(dir string) int {
	s := 0
	parent := filepath.Dir(dir)
	if isDir(filepath.Join(parent, ".git")) {
		s += 2
	}
	if isDir(filepath.Join(parent, "Engine")) {
		s++
	}
	return s
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// ResolveAsset resolves a relative path against the assets root, falling
// back to the literal path when the root is unset or the file is absent.
func (r Roots) ResolveAsset(rel string) string {
	return resolve(r.Assets, rel)
}

// ResolveData resolves a relative path against the data root with the
// same fallback behavior.
func (r Roots) ResolveData(rel string) string {
	return resolve(r.Data, rel)
}

func resolve(root, rel string) string {
	if root == "" || filepath.IsAbs(rel) {
		return rel
	}
	joined := filepath.Join(root, rel)
	if _, err := os.Stat(joined); err == nil {
		return joined
	}
	return rel
}
