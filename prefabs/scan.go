package prefabs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Scan loads every conforming prefab document under dir. Files without
// a GameObject object are skipped silently; malformed prefabs are
// logged and skipped. When two prefabs share a name the later file
// (lexical directory order) wins.
func Scan(dir string, log *zap.Logger) (map[string]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("prefabs: scan %s: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	docs := make(map[string]*Document)
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ParseFile(path)
		if err != nil {
			if !errors.Is(err, ErrNotPrefab) {
				log.Warn("skipping malformed prefab", zap.String("file", path), zap.Error(err))
			}
			continue
		}
		if _, exists := docs[doc.Name]; exists {
			log.Debug("prefab name collision, later file wins", zap.String("name", doc.Name), zap.String("file", path))
		}
		docs[doc.Name] = doc
	}
	return docs, nil
}
