package io

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/hkxbatch/internal/model"
)

func TestToolsConfigYAMLRepository_GetToolPaths(t *testing.T) {
	defaultDir := filepath.FromSlash("/home/user/.hkxbatch/tools")
	customDir := filepath.FromSlash("/opt/havok")

	tests := map[string]struct {
		fs       fstest.MapFS
		path     string
		expPaths model.ToolPaths
		expErr   bool
		errMsg   string
	}{
		"Empty config should use the conventional tool locations": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("---\n")},
			},
			path: "config.yaml",
			expPaths: model.ToolPaths{
				Executables: map[model.ConverterTool]string{
					model.ToolHkxCmd:         filepath.Join(defaultDir, "hkxcmd.exe"),
					model.ToolHCT:            filepath.Join(defaultDir, "hctStandAloneFilterManager.exe"),
					model.ToolHkxPostProcess: filepath.Join(defaultDir, "HavokBehaviorPostProcess.exe"),
					model.ToolHkxC:           filepath.Join(defaultDir, "hkxc.exe"),
					model.ToolHkxConv:        filepath.Join(defaultDir, "hkxconv.exe"),
				},
				SSEToLEHko:          filepath.Join(defaultDir, "_SSEtoLE.hko"),
				HCTFilterManagerDLL: filepath.Join(defaultDir, "hctFilterManager.dll"),
			},
		},

		"Tools dir, overrides, assets and launcher should be loaded": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`tools_dir: /opt/havok
launcher: [wine]
tools:
  hkxc: hkxc-1.2.exe
  hkxconv: /usr/local/bin/hkxconv
assets:
  sse_to_le_hko: filters/_SSEtoLE.hko
`),
				},
			},
			path: "config.yaml",
			expPaths: model.ToolPaths{
				Executables: map[model.ConverterTool]string{
					model.ToolHkxCmd:         filepath.Join(customDir, "hkxcmd.exe"),
					model.ToolHCT:            filepath.Join(customDir, "hctStandAloneFilterManager.exe"),
					model.ToolHkxPostProcess: filepath.Join(customDir, "HavokBehaviorPostProcess.exe"),
					model.ToolHkxC:           filepath.Join(customDir, "hkxc-1.2.exe"),
					model.ToolHkxConv:        "/usr/local/bin/hkxconv",
				},
				Launcher:            []string{"wine"},
				SSEToLEHko:          filepath.Join(customDir, "filters", "_SSEtoLE.hko"),
				HCTFilterManagerDLL: filepath.Join(customDir, "hctFilterManager.dll"),
			},
		},

		"Unknown tool should return error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("tools:\n  havok2000: h.exe\n")},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "unknown converter tool",
		},

		"Empty tool executable should return error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("tools:\n  hkxc: \"\"\n")},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "hkxc executable path is empty",
		},

		"Empty launcher argument should return error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("launcher: [wine, \"\"]\n")},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "launcher: argument 1 is empty",
		},

		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading tools config file",
		},

		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewToolsConfigYAMLRepository(tc.fs)
			paths, err := repo.GetToolPaths(context.Background(), tc.path, defaultDir)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expPaths, paths)
		})
	}
}

func TestToolsConfigYAMLRepository_GetToolPaths_MissingFileIsNotExist(t *testing.T) {
	repo := NewToolsConfigYAMLRepository(fstest.MapFS{})

	_, err := repo.GetToolPaths(context.Background(), "config.yaml", "/tools")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestToolsConfigYAMLRepository_GetToolPaths_ContextCancellation(t *testing.T) {
	fsys := fstest.MapFS{
		"config.yaml": &fstest.MapFile{Data: []byte("tools_dir: /tools\n")},
	}

	repo := NewToolsConfigYAMLRepository(fsys)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := repo.GetToolPaths(ctx, "config.yaml", "/tools")
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

func TestNewToolsConfigFileRepository(t *testing.T) {
	tests := map[string]struct {
		write    bool
		relative bool
		expErr   error
	}{
		"An absolute OS path should be loaded": {
			write: true,
		},

		"A relative OS path should be loaded": {
			write:    true,
			relative: true,
		},

		"A missing file should be reported as not existing": {
			expErr: fs.ErrNotExist,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if test.write {
				err := os.WriteFile(path, []byte("launcher: [wine]\n"), 0o644)
				require.NoError(err)
			}
			if test.relative {
				t.Chdir(dir)
				path = "config.yaml"
			}

			repo, file, err := NewToolsConfigFileRepository(path)
			require.NoError(err)
			assert.True(fs.ValidPath(file))

			paths, err := repo.GetToolPaths(context.Background(), file, "/tools")
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal([]string{"wine"}, paths.Launcher)
		})
	}
}
