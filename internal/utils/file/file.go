// Package file provides the filesystem operations used by the converters: copying,
// moving across filesystems and output checks.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Replaceable on tests to simulate rename failures (e.g. cross device).
var renameFunc = os.Rename

// ErrCrossDevice is returned (wrapped) when a rename fails because source and
// destination are on different filesystems.
var ErrCrossDevice = errors.New("cross device rename")

// CopyFile copies src into dst, creating or truncating dst. It returns the number
// of bytes copied. The destination is synced before returning.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("could not open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("could not stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("source %q is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("could not create destination: %w", err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("could not copy data: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return n, fmt.Errorf("could not sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("could not close destination: %w", err)
	}

	return n, nil
}

// Rename wraps os.Rename marking cross device failures with ErrCrossDevice.
func Rename(src, dst string) error {
	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if isEXDEV(err) {
		return fmt.Errorf("%q -> %q: %w: %w", src, dst, ErrCrossDevice, err)
	}
	return err
}

// Move moves src to dst replacing dst if it exists. When the rename fails (e.g. the
// paths are on different filesystems) it falls back to copy and delete.
func Move(src, dst string) error {
	if err := removeIfExists(dst); err != nil {
		return fmt.Errorf("could not remove existing destination: %w", err)
	}

	renameErr := Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	if _, err := CopyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("rename failed (%s) and copy fallback failed: %w", renameErr, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("could not remove source after copy: %w", err)
	}

	return nil
}

// EnsureParentDir creates the parent directory of path if missing.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Size returns the size of a regular file.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%q is not a regular file", path)
	}
	return info.Size(), nil
}

// IsRegularFile returns true if path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// NonEmptyFile returns true if path is a regular file with content.
func NonEmptyFile(path string) bool {
	size, err := Size(path)
	return err == nil && size > 0
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
