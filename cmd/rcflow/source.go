package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/rcflow"
	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/aretw0/rcflow/pkg/project"
)

// readProjectFile imports a project document from disk. The format follows
// the file extension.
func readProjectFile(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := project.Import(data, project.ParseFormat(filepath.Ext(path)), time.Now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// resolveProject treats ref as a file path when one exists and as a project
// ID otherwise.
func resolveProject(ctx context.Context, eng *rcflow.Engine, ref string) (*domain.Project, error) {
	if _, err := os.Stat(ref); err == nil {
		return readProjectFile(ref)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return eng.Projects().Get(ctx, ref)
}

func isFile(ref string) bool {
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}
