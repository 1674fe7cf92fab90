package file

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "src.hkx")
	dst := filepath.Join(dir, "dst.hkx")
	require.NoError(os.WriteFile(src, []byte("havok"), 0o644))
	require.NoError(os.WriteFile(dst, []byte("previous longer content"), 0o644))

	n, err := CopyFile(src, dst)
	require.NoError(err)
	assert.Equal(int64(5), n)

	got, err := os.ReadFile(dst)
	require.NoError(err)
	assert.Equal("havok", string(got))
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	assert.Error(t, err)
}

func TestMove(t *testing.T) {
	tests := map[string]struct {
		rename     func(oldpath, newpath string) error
		existing   bool
		expErr     bool
		expContent string
	}{
		"A regular rename should move the file": {
			rename:     os.Rename,
			expContent: "data",
		},

		"An existing destination should be replaced": {
			rename:     os.Rename,
			existing:   true,
			expContent: "data",
		},

		"A cross device rename should fall back to copy and delete": {
			rename: func(oldpath, newpath string) error {
				return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
			},
			expContent: "data",
		},

		"Any rename failure should fall back to copy and delete": {
			rename: func(oldpath, newpath string) error {
				return os.ErrPermission
			},
			existing:   true,
			expContent: "data",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			old := renameFunc
			renameFunc = test.rename
			defer func() { renameFunc = old }()

			dir := t.TempDir()
			src := filepath.Join(dir, "filename.hkx")
			dst := filepath.Join(dir, "out", "walk.hkx")
			require.NoError(os.WriteFile(src, []byte("data"), 0o644))
			require.NoError(EnsureParentDir(dst))
			if test.existing {
				require.NoError(os.WriteFile(dst, []byte("old"), 0o644))
			}

			err := Move(src, dst)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			got, err := os.ReadFile(dst)
			require.NoError(err)
			assert.Equal(test.expContent, string(got))
			_, err = os.Stat(src)
			assert.True(errors.Is(err, os.ErrNotExist), "source should not exist after move")
		})
	}
}

func TestRenameMarksCrossDevice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("EXDEV is unix only")
	}

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	err := Rename("a", "b")
	assert.ErrorIs(t, err, ErrCrossDevice)
}

func TestNonEmptyFile(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	full := filepath.Join(dir, "full")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))

	assert.False(t, NonEmptyFile(empty))
	assert.True(t, NonEmptyFile(full))
	assert.False(t, NonEmptyFile(filepath.Join(dir, "missing")))
	assert.False(t, NonEmptyFile(dir))
	assert.True(t, IsRegularFile(empty))
}
