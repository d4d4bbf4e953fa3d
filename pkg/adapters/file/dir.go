package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	docExt    = ".json"
	tmpPrefix = "tmp-"
)

// docDir is a directory holding one indented JSON document per ID.
type docDir string

func (d docDir) path(id string) (string, error) {
	if id == "" {
		return "", errors.New("id cannot be empty")
	}
	if id != filepath.Base(id) || id == "." || id == ".." || strings.HasPrefix(id, tmpPrefix) {
		return "", fmt.Errorf("invalid id %q", id)
	}
	return filepath.Join(string(d), id+docExt), nil
}

// write replaces the document for id. The data goes to a synced temp file in
// the same directory first, so readers see either the old or the new document.
func (d docDir) write(id string, v any) error {
	dest, err := d.path(id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", id, err)
	}
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", d, err)
	}

	tmp, err := os.CreateTemp(string(d), tmpPrefix+"*-"+id+docExt)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", id, err)
	}
	// The file must be closed before the rename on Windows.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", id, err)
	}
	// os.Rename does not replace an existing file on Windows.
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replace %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("rename %s: %w", id, err)
	}
	return nil
}

// read decodes the document for id into v. It returns fs.ErrNotExist when
// there is none.
func (d docDir) read(id string, v any) error {
	p, err := d.path(id)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", id, err)
	}
	return nil
}

// remove deletes the document for id. A missing document is not an error.
func (d docDir) remove(id string) error {
	p, err := d.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ids lists the stored IDs in lexical order. A missing directory is empty.
func (d docDir) ids() ([]string, error) {
	entries, err := os.ReadDir(string(d))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tmpPrefix) {
			continue
		}
		if id, ok := strings.CutSuffix(name, docExt); ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
