package artifact

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"unicode"
)

// Validate checks that dir holds exactly the four bundle files as regular
// non-empty files and nothing else. It sniffs structure cheaply: config.json must decode as a JSON
// object and the other artifacts must start with '{'. Full decoding is left
// to the model loader.
func Validate(dir string) error {
	verr := &ValidationError{Dir: dir}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		verr.Missing = append(verr.Missing, RequiredFiles...)
		return verr
	}

	for _, name := range RequiredFiles {
		path := filepath.Join(dir, name)
		fi, err := os.Lstat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			verr.Missing = append(verr.Missing, name)
			continue
		case err != nil:
			verr.addMalformed(name, err.Error())
			continue
		case !fi.Mode().IsRegular():
			verr.addMalformed(name, "not a regular file")
			continue
		case fi.Size() == 0:
			verr.addMalformed(name, "empty file")
			continue
		}

		if err := sniff(path, name == ConfigFile); err != nil {
			verr.addMalformed(name, err.Error())
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		verr.addMalformed(".", err.Error())
	}
	for _, e := range entries {
		if !slices.Contains(RequiredFiles, e.Name()) {
			verr.Unexpected = append(verr.Unexpected, e.Name())
		}
	}

	if len(verr.Missing) == 0 && len(verr.Malformed) == 0 && len(verr.Unexpected) == 0 {
		return nil
	}
	return verr
}

func (e *ValidationError) addMalformed(name, reason string) {
	if e.Malformed == nil {
		e.Malformed = make(map[string]string)
	}
	e.Malformed[name] = reason
}

func sniff(path string, decode bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if decode {
		var record map[string]any
		if err := json.NewDecoder(f).Decode(&record); err != nil {
			return fmt.Errorf("not a JSON object: %w", err)
		}
		return nil
	}

	r := bufio.NewReader(f)
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return fmt.Errorf("no JSON content")
		}
		if unicode.IsSpace(c) || c == '\uFEFF' {
			continue
		}
		if c != '{' {
			return fmt.Errorf("expected JSON object, starts with %q", c)
		}
		return nil
	}
}
