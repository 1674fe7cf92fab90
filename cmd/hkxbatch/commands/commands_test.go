package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/hkxbatch/internal/app/ingest"
	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
)

func TestRootCommandToolPaths(t *testing.T) {
	tests := map[string]struct {
		config    string
		explicit  bool
		expPaths  func(dataDir string) model.ToolPaths
		expErr    bool
		skipWrite bool
	}{
		"Missing default config should use the tools inside the data dir": {
			skipWrite: true,
			expPaths: func(dataDir string) model.ToolPaths {
				return conventions.DefaultToolPaths(filepath.Join(dataDir, conventions.ToolsDir))
			},
		},
		"Missing explicit config should fail": {
			skipWrite: true,
			explicit:  true,
			expErr:    true,
		},
		"Default config should be loaded": {
			config: "tools_dir: /opt/havok\nlauncher: [wine]\n",
			expPaths: func(dataDir string) model.ToolPaths {
				p := conventions.DefaultToolPaths("/opt/havok")
				p.Launcher = []string{"wine"}
				return p
			},
		},
		"Explicit config should be loaded": {
			config:   "tools:\n  hkxcmd: /usr/local/bin/hkxcmd\n",
			explicit: true,
			expPaths: func(dataDir string) model.ToolPaths {
				p := conventions.DefaultToolPaths(filepath.Join(dataDir, conventions.ToolsDir))
				p.Executables[model.ToolHkxCmd] = "/usr/local/bin/hkxcmd"
				return p
			},
		},
		"Invalid config should fail": {
			config: "tools:\n  unknown: x.exe\n",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dataDir := t.TempDir()
			root := RootCommand{DataDir: dataDir, Logger: log.Noop}

			configPath := filepath.Join(dataDir, conventions.ConfigFile)
			if test.explicit {
				configPath = filepath.Join(t.TempDir(), "custom.yaml")
				root.ConfigPath = configPath
			}
			if !test.skipWrite {
				require.NoError(t, os.WriteFile(configPath, []byte(test.config), 0o644))
			}

			paths, err := root.ToolPaths(context.TODO())

			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expPaths(dataDir), paths)
		})
	}
}

func TestConvertCommandBatchRequest(t *testing.T) {
	tests := map[string]struct {
		cmd      ConvertCommand
		ingested ingest.Result
		exp      model.BatchRequest
	}{
		"Output should default to the folder of the first input": {
			cmd: ConvertCommand{tool: "hkxcmd", format: "se"},
			ingested: ingest.Result{
				Inputs: []string{"/mods/anims/walk.hkx", "/other/run.hkx"},
			},
			exp: model.BatchRequest{
				Inputs:     []string{"/mods/anims/walk.hkx", "/other/run.hkx"},
				OutputRoot: "/mods/anims",
				Tool:       model.ToolHkxCmd,
				Format:     model.OutputFormatSkyrimSE,
			},
		},
		"Ingested base folder should be used when not set": {
			cmd: ConvertCommand{tool: "hkxc", format: "xml", output: "/out", suffix: "_x"},
			ingested: ingest.Result{
				Inputs:     []string{"/mods/anims/a/walk.hkx"},
				BaseFolder: "/mods/anims",
			},
			exp: model.BatchRequest{
				Inputs:     []string{"/mods/anims/a/walk.hkx"},
				OutputRoot: "/out",
				BaseFolder: "/mods/anims",
				Tool:       model.ToolHkxC,
				Format:     model.OutputFormatXML,
				Suffix:     "_x",
			},
		},
		"Explicit base folder should override the ingested one": {
			cmd: ConvertCommand{tool: "hkxc", format: "xml", output: "/out", base: "/mods"},
			ingested: ingest.Result{
				Inputs:     []string{"/mods/anims/a/walk.hkx"},
				BaseFolder: "/mods/anims",
			},
			exp: model.BatchRequest{
				Inputs:     []string{"/mods/anims/a/walk.hkx"},
				OutputRoot: "/out",
				BaseFolder: "/mods",
				Tool:       model.ToolHkxC,
				Format:     model.OutputFormatXML,
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			req, err := test.cmd.batchRequest(&test.ingested)
			require.NoError(t, err)
			assert.Equal(t, test.exp, req)
		})
	}
}

func TestConvertCommandBatchRequestRelativePaths(t *testing.T) {
	cmd := ConvertCommand{tool: "hkxcmd", format: "se", output: "out"}

	req, err := cmd.batchRequest(&ingest.Result{Inputs: []string{"walk.hkx"}})
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(wd, "walk.hkx")}, req.Inputs)
	assert.Equal(t, filepath.Join(wd, "out"), req.OutputRoot)
}

func TestConvertCommandHistoryDBPath(t *testing.T) {
	root := &RootCommand{DataDir: filepath.Join("/", "data")}

	tests := map[string]struct {
		cmd       ConvertCommand
		expDBPath string
	}{
		"Without history flags nothing should be saved": {
			cmd:       ConvertCommand{rootCmd: root},
			expDBPath: "",
		},

		"The history flag should use the database read by the history command": {
			cmd:       ConvertCommand{rootCmd: root, history: true},
			expDBPath: root.HistoryDBPath(),
		},

		"An explicit database should win over the default one": {
			cmd:       ConvertCommand{rootCmd: root, history: true, historyDB: "custom.db"},
			expDBPath: "custom.db",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expDBPath, test.cmd.historyDBPath())
		})
	}
}

func TestHistoryCommandWithoutDatabase(t *testing.T) {
	tests := map[string]struct {
		batchID string
		format  string
		expOut  string
		expErr  error
	}{
		"Listing should explain how to save batches": {
			format: formatTable,
			expOut: "convert --history",
		},

		"Listing in JSON should print an empty list": {
			format: formatJSON,
			expOut: "[]",
		},

		"Getting a batch should not find it": {
			batchID: "01JBATCH",
			format:  formatTable,
			expErr:  model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var out bytes.Buffer
			root := &RootCommand{DataDir: t.TempDir(), Stdout: &out, Logger: log.Noop}
			cmd := HistoryCommand{rootCmd: root, batchID: test.batchID, format: test.format}

			err := cmd.Run(context.Background())
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else {
				require.NoError(err)
				assert.Contains(out.String(), test.expOut)
			}
			assert.NoFileExists(root.HistoryDBPath())
		})
	}
}

func TestParseTools(t *testing.T) {
	tools, err := parseTools([]string{"hct", "HKXCMD"})
	require.NoError(t, err)
	assert.Equal(t, []model.ConverterTool{model.ToolHCT, model.ToolHkxCmd}, tools)

	_, err = parseTools([]string{"nope"})
	assert.ErrorIs(t, err, model.ErrValidation)
}
