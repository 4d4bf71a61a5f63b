package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const upStub = `-- %s
-- created %s

`

const downStub = `-- %s (rollback)
-- created %s

`

// FilePair is the up/down file pair of one scaffolded migration
type FilePair struct {
	Version  string
	UpPath   string
	DownPath string
}

// Scaffold creates an empty timestamped up/down migration pair in dir,
// creating the directory if needed. The version is the current time in
// YYYYMMDDHHMMSS form so files sort in creation order.
func Scaffold(dir, name string) (*FilePair, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	now := time.Now()
	version := now.Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, slugify(name))

	pair := &FilePair{
		Version:  version,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	stamp := now.Format(time.RFC3339)
	if err := os.WriteFile(pair.UpPath, []byte(fmt.Sprintf(upStub, name, stamp)), 0644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(pair.DownPath, []byte(fmt.Sprintf(downStub, name, stamp)), 0644); err != nil {
		os.Remove(pair.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return pair, nil
}

// slugify lowercases a migration name and collapses everything that is not
// a letter or digit into single underscores
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			s := b.String()
			if len(s) > 0 && s[len(s)-1] != '_' {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// List returns the base names of the migration pairs in dir, sorted by file
// name. A missing directory is treated as empty.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
