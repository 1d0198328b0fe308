package loadergen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
)

// FS is a pseudo-filesystem of generated files that supports batch-writing its
// contents to the real filesystem, or batch-comparing its contents to the real
// filesystem.
//
// Generated loader sources are committed and diffed across builds, so the
// normal behavior of writing files should change in CI to verifying that what
// is already on disk is identical to a fresh generation. FS supports these
// behaviors through its Write and Verify methods, respectively.
//
// Files may not be removed once added. If a path conflict occurs when adding a
// new file, an error is returned.
type FS struct {
	files map[string]file
}

// File is a single generated file within an FS.
type File struct {
	// The relative path to which the generated file should be written.
	RelativePath string

	// Contents of the generated file.
	Data []byte

	// From is the stack of jennies responsible for producing this File.
	From []NamedJenny
}

// Validate checks that the File can be added to an FS.
func (f File) Validate() error {
	if f.RelativePath == "" {
		return fmt.Errorf("generated file from %q has no path", jennystack(f.From))
	}
	if filepath.IsAbs(f.RelativePath) {
		return fmt.Errorf("files added to FS must have relative paths, got %s from %q", f.RelativePath, jennystack(f.From))
	}
	return nil
}

type file struct {
	b     []byte
	owner string
}

// NewFS creates a new FS, ready for use.
func NewFS() *FS {
	return &FS{
		files: make(map[string]file),
	}
}

// Add adds one or more files to the FS. An error is returned if any of the
// provided files is invalid or would conflict with a file already added.
func (fs *FS) Add(flist ...File) error {
	var result *multierror.Error
	for _, f := range flist {
		if err := f.Validate(); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if rf, has := fs.files[f.RelativePath]; has {
			result = multierror.Append(result, fmt.Errorf("FS cannot create %s for %q, already created for %q", f.RelativePath, jennystack(f.From), rf.owner))
		}
	}
	if result.ErrorOrNil() != nil {
		return result
	}

	for _, f := range flist {
		fs.files[f.RelativePath] = file{b: f.Data, owner: jennystack(f.From)}
	}
	return nil
}

// Len returns the number of files in the FS.
func (fs *FS) Len() int {
	return len(fs.files)
}

type writeSlice []struct {
	path     string
	contents []byte
}

func (fs *FS) toSlice() writeSlice {
	sl := make(writeSlice, 0, len(fs.files))
	for k, v := range fs.files {
		sl = append(sl, struct {
			path     string
			contents []byte
		}{path: k, contents: v.b})
	}
	sort.Slice(sl, func(i, j int) bool {
		return sl[i].path < sl[j].path
	})
	return sl
}

// Write writes all of the files to their indicated paths.
//
// If the provided prefix path is non-empty, it will be prepended to all file
// entries in the map for writing. prefix may be an absolute path.
func (fs *FS) Write(ctx context.Context, prefix string) error {
	for _, item := range fs.toSlice() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(prefix, item.path)
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return errors.Wrapf(err, "%s: failed to ensure parent directory exists", path)
		}
		if err := os.WriteFile(path, item.contents, 0644); err != nil {
			return errors.Wrapf(err, "%s: error while writing file", path)
		}
	}
	return nil
}

// Verify checks the contents of each file against the filesystem. It emits an
// error if any of its contained files are missing or differ.
//
// If the provided prefix path is non-empty, it will be prepended to all file
// entries in the map for reading. prefix may be an absolute path.
func (fs *FS) Verify(ctx context.Context, prefix string) error {
	var result *multierror.Error
	for _, item := range fs.toSlice() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(prefix, item.path)
		ob, err := os.ReadFile(path) //nolint:gosec
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				result = multierror.Append(result, fmt.Errorf("%s: generated file should exist, but does not", path))
				continue
			}
			return errors.Wrapf(err, "%s: error reading file", path)
		}
		if dstr := cmp.Diff(string(ob), string(item.contents)); dstr != "" {
			result = multierror.Append(result, fmt.Errorf("%s would have changed:\n\n%s", path, dstr))
		}
	}
	return result.ErrorOrNil()
}
