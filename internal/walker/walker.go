// Package walker finds ingestible documents on the filesystem.
package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtensions are the file extensions the extraction stage can
// decode.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".csv":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
}

// Config controls which files Collect returns.
type Config struct {
	Include []string // glob patterns; empty means everything
	Exclude []string // glob patterns applied after Include
}

// Supported reports whether the path has an extension the extraction stage
// handles.
func Supported(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Collect returns the supported files under root that pass the include and
// exclude filters. A root that is itself a file is returned as-is when it
// is supported.
func Collect(root string, cfg Config) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !Supported(root) {
			return nil, nil
		}
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !Supported(path) {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}
		if !MatchesInclude(relPath, cfg.Include) {
			return nil
		}
		if MatchesExclude(relPath, cfg.Exclude) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
