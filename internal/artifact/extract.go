package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// extractZip unpacks archive into dest. Entries that would land outside
// dest and symlinks are rejected.
func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return &ExtractionError{Op: "open archive", Path: archive, Err: err}
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &ExtractionError{Op: "create extract dir", Path: dest, Err: err}
	}

	clean := filepath.Clean(dest)
	root := clean + string(os.PathSeparator)

	for _, zf := range r.File {
		target := filepath.Join(dest, zf.Name)
		if target == clean {
			continue
		}
		if !strings.HasPrefix(target, root) {
			return &ExtractionError{Op: "extract", Path: zf.Name, Err: errors.New("entry escapes archive root")}
		}

		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return &ExtractionError{Op: "extract", Path: zf.Name, Err: err}
			}
			continue
		case mode&fs.ModeSymlink != 0:
			return &ExtractionError{Op: "extract", Path: zf.Name, Err: errors.New("symlinks are not allowed")}
		case !mode.IsRegular():
			continue
		}

		if err := extractFile(zf, target); err != nil {
			return &ExtractionError{Op: "extract", Path: zf.Name, Err: err}
		}
	}

	return nil
}

func extractFile(zf *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := zf.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// collectBundle finds the required files anywhere under root and moves them
// flat into dest. When a name occurs more than once the shallowest wins.
func collectBundle(root, dest string) error {
	type hit struct {
		path  string
		depth int
	}
	found := make(map[string]hit, len(RequiredFiles))
	wanted := make(map[string]bool, len(RequiredFiles))
	for _, name := range RequiredFiles {
		wanted[name] = true
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !wanted[d.Name()] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := strings.Count(rel, string(os.PathSeparator))
		if prev, ok := found[d.Name()]; !ok || depth < prev.depth {
			found[d.Name()] = hit{path: path, depth: depth}
		}
		return nil
	})
	if err != nil {
		return &ExtractionError{Op: "scan archive", Path: root, Err: err}
	}

	var missing []string
	for _, name := range RequiredFiles {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Dir: root, Missing: missing}
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &ExtractionError{Op: "create bundle dir", Path: dest, Err: err}
	}
	for _, name := range RequiredFiles {
		if err := os.Rename(found[name].path, filepath.Join(dest, name)); err != nil {
			return &ExtractionError{Op: "stage", Path: name, Err: fmt.Errorf("move: %w", err)}
		}
	}
	return nil
}
