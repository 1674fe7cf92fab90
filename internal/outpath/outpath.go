// Package outpath computes where a converted file is written.
//
// Everything here is pure: no filesystem access, same input same output.
package outpath

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Options are the inputs of Resolve.
type Options struct {
	// Input is the file being converted.
	Input string
	// OutputRoot is the folder where outputs are written. Required.
	OutputRoot string
	// BaseFolder mirrors the input directory structure below it into OutputRoot.
	// Optional.
	BaseFolder string
	// GroupRoot is used when BaseFolder is not set, normally the common ancestor of
	// all the batch inputs (see CommonDir). Empty means no subdirectory.
	GroupRoot string
	// Suffix is appended to the file stem separated by an underscore. Optional.
	Suffix string
	// Extension is the output file extension, the format default normally.
	Extension string
	// ExtensionOverride replaces Extension when set.
	ExtensionOverride string
}

// Resolve returns the output path of a file.
//
// The relative directory is the input parent relative to BaseFolder (when it is an
// ancestor of the input), otherwise relative to GroupRoot. The result never escapes
// OutputRoot, an input outside the reference folder gets no subdirectory. Suffixes and
// extensions with path separators fail.
func Resolve(opts Options) (string, error) {
	if opts.OutputRoot == "" {
		return "", fmt.Errorf("output root is required")
	}

	base := filepath.Base(opts.Input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if opts.Input == "" || stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "", fmt.Errorf("input %q has no file name", opts.Input)
	}

	ext := opts.Extension
	if opts.ExtensionOverride != "" {
		ext = opts.ExtensionOverride
	}
	ext = strings.TrimPrefix(ext, ".")
	if err := ValidateNamePart(ext); err != nil {
		return "", fmt.Errorf("invalid extension: %w", err)
	}
	if err := ValidateNamePart(opts.Suffix); err != nil {
		return "", fmt.Errorf("invalid suffix: %w", err)
	}

	name := stem
	if suffix := strings.TrimLeft(opts.Suffix, "_"); suffix != "" {
		name = stem + "_" + suffix
	}
	if ext != "" {
		name = name + "." + ext
	}

	parent := filepath.Dir(opts.Input)
	rel := ""
	switch {
	case opts.BaseFolder != "":
		rel = relativeDir(opts.BaseFolder, parent)
	case opts.GroupRoot != "":
		rel = relativeDir(opts.GroupRoot, parent)
	}

	out := filepath.Join(opts.OutputRoot, rel, name)
	if relativeDir(opts.OutputRoot, filepath.Dir(out)) == "" && filepath.Clean(filepath.Dir(out)) != filepath.Clean(opts.OutputRoot) {
		return "", fmt.Errorf("output %q is outside %q", out, opts.OutputRoot)
	}

	return out, nil
}

// ValidateNamePart checks s can be used inside a file name: no path separators of
// any platform and no parent directory references.
func ValidateNamePart(s string) error {
	if strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%q contains a path separator", s)
	}
	if s == ".." {
		return fmt.Errorf("%q is a parent directory reference", s)
	}
	return nil
}

// relativeDir returns dir relative to root, or empty if dir is not inside root.
func relativeDir(root, dir string) string {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(dir))
	if err != nil {
		return ""
	}
	if rel == "." || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return rel
}

// CommonDir returns the deepest directory that contains the parent directories of
// all the paths. With less than two paths it returns empty, a single ungrouped file
// gets no subdirectory.
func CommonDir(paths []string) string {
	if len(paths) < 2 {
		return ""
	}

	common := filepath.Clean(filepath.Dir(paths[0]))
	for _, p := range paths[1:] {
		dir := filepath.Clean(filepath.Dir(p))
		for !isWithin(common, dir) {
			next := filepath.Dir(common)
			if next == common {
				// Different volumes or mixing relative and absolute paths.
				return ""
			}
			common = next
		}
	}

	return common
}

// isWithin returns true if dir is root or is below root.
func isWithin(root, dir string) bool {
	if root == dir {
		return true
	}
	if root == "." {
		return !filepath.IsAbs(dir) && dir != ".." && !strings.HasPrefix(dir, ".."+string(filepath.Separator))
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(dir, prefix)
}
