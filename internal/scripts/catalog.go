// Package scripts discovers PowerShell scripts in a directory and loads their
// parameter declarations.
package scripts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/temirov/psrun/internal/params"
)

const (
	// DefaultExtension is the extension of PowerShell script files.
	DefaultExtension = ".ps1"
	// DefaultConcurrency bounds the number of scripts parsed at once.
	DefaultConcurrency = 8

	directoryPermissions = 0o755

	errorDirectoryNotFoundFormat = "%w: %s"
	errorScriptNotFoundFormat    = "%w: %s"
	errorReadDirectoryFormat     = "read scripts directory %s: %w"
	errorCreateDirectoryFormat   = "create scripts directory %s: %w"
	errorReadScriptFormat        = "read script %s: %w"
	errorDecodeScriptFormat      = "decode script %s: %w"
	errorParseScriptFormat       = "parse script %s: %w"
	errorStatScriptFormat        = "stat script %s: %w"
)

var (
	// ErrDirectoryNotFound reports a missing scripts directory.
	ErrDirectoryNotFound = errors.New("scripts directory not found")
	// ErrScriptNotFound reports a missing script file.
	ErrScriptNotFound = errors.New("script not found")
)

// Descriptor identifies one discoverable script.
type Descriptor struct {
	Path        string `json:"path" yaml:"path" xml:"path"`
	DisplayName string `json:"name" yaml:"name" xml:"name"`
}

// Parameters holds the declarations loaded from one script.
type Parameters struct {
	Script       Descriptor           `json:"script" yaml:"script" xml:"script"`
	Declarations []params.Declaration `json:"parameters" yaml:"parameters" xml:"parameters>parameter"`
	Dependencies params.Dependencies  `json:"dependencies,omitempty" yaml:"dependencies,omitempty" xml:"-"`
}

// LoadResult pairs a script with the outcome of loading it.
type LoadResult struct {
	Parameters
	Err error `json:"-" yaml:"-" xml:"-"`
}

// Catalog lists and loads scripts from a directory.
type Catalog struct {
	Directory   string
	Extension   string
	Concurrency int
}

// NewCatalog returns a catalog for directory using the default extension.
func NewCatalog(directory string) Catalog {
	return Catalog{Directory: directory, Extension: DefaultExtension, Concurrency: DefaultConcurrency}
}

func (catalog Catalog) extension() string {
	if catalog.Extension == "" {
		return DefaultExtension
	}
	if !strings.HasPrefix(catalog.Extension, ".") {
		return "." + catalog.Extension
	}
	return catalog.Extension
}

// EnsureDirectory creates the scripts directory when it does not exist.
func (catalog Catalog) EnsureDirectory() error {
	if err := os.MkdirAll(catalog.Directory, directoryPermissions); err != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, catalog.Directory, err)
	}
	return nil
}

// List returns the scripts in the directory ordered by display name.
func (catalog Catalog) List(ctx context.Context) ([]Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(catalog.Directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(errorDirectoryNotFoundFormat, ErrDirectoryNotFound, catalog.Directory)
		}
		return nil, fmt.Errorf(errorReadDirectoryFormat, catalog.Directory, err)
	}
	extension := catalog.extension()
	descriptors := make([]Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			Path:        filepath.Join(catalog.Directory, entry.Name()),
			DisplayName: entry.Name(),
		})
	}
	sort.Slice(descriptors, func(left, right int) bool {
		return strings.ToLower(descriptors[left].DisplayName) < strings.ToLower(descriptors[right].DisplayName)
	})
	return descriptors, nil
}

// Resolve finds a script by display name, by name without extension or by path.
func (catalog Catalog) Resolve(name string) (Descriptor, error) {
	candidate := name
	if !filepath.IsAbs(candidate) && !strings.ContainsAny(candidate, `/\`) {
		candidate = filepath.Join(catalog.Directory, candidate)
	}
	candidates := []string{candidate}
	if !strings.EqualFold(filepath.Ext(candidate), catalog.extension()) {
		candidates = append(candidates, candidate+catalog.extension())
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Descriptor{}, fmt.Errorf(errorStatScriptFormat, path, err)
		}
		if info.IsDir() {
			continue
		}
		return Descriptor{Path: path, DisplayName: filepath.Base(path)}, nil
	}
	return Descriptor{}, fmt.Errorf(errorScriptNotFoundFormat, ErrScriptNotFound, name)
}

// Load reads a script and parses its param block.
func (catalog Catalog) Load(ctx context.Context, script Descriptor) (Parameters, error) {
	if err := ctx.Err(); err != nil {
		return Parameters{}, err
	}
	content, err := os.ReadFile(script.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Parameters{}, fmt.Errorf(errorScriptNotFoundFormat, ErrScriptNotFound, script.Path)
		}
		return Parameters{}, fmt.Errorf(errorReadScriptFormat, script.Path, err)
	}
	text, err := decodeScript(content)
	if err != nil {
		return Parameters{}, fmt.Errorf(errorDecodeScriptFormat, script.Path, err)
	}
	declarations, dependencies, err := params.Parse(text)
	if err != nil {
		return Parameters{}, fmt.Errorf(errorParseScriptFormat, script.Path, err)
	}
	return Parameters{Script: script, Declarations: declarations, Dependencies: dependencies}, nil
}

// LoadAll loads every listed script concurrently. Failures are reported per
// script; the returned error covers listing and cancellation only.
func (catalog Catalog) LoadAll(ctx context.Context) ([]LoadResult, error) {
	descriptors, err := catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]LoadResult, len(descriptors))
	group, groupContext := errgroup.WithContext(ctx)
	limit := catalog.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	group.SetLimit(limit)
	for index, descriptor := range descriptors {
		index, descriptor := index, descriptor
		group.Go(func() error {
			loaded, loadErr := catalog.Load(groupContext, descriptor)
			if errors.Is(loadErr, context.Canceled) || errors.Is(loadErr, context.DeadlineExceeded) {
				return loadErr
			}
			loaded.Script = descriptor
			results[index] = LoadResult{Parameters: loaded, Err: loadErr}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// decodeScript honours UTF-8 and UTF-16 byte order marks, which Windows
// editors commonly write, and strips them.
func decodeScript(content []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
