package doctor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/hkxbatch/internal/app/doctor"
	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/model"
)

func statusByID(results []model.CheckResult) map[string]model.CheckStatus {
	m := map[string]model.CheckStatus{}
	for _, r := range results {
		m[r.ID] = r.Status
	}
	return m
}

func TestServiceRun(t *testing.T) {
	lookPathOK := func(file string) (string, error) { return "/usr/bin/" + file, nil }
	lookPathErr := func(string) (string, error) { return "", errors.New("not found") }

	tests := map[string]struct {
		files     []string
		launcher  []string
		lookPath  func(string) (string, error)
		goos      string
		req       doctor.Request
		expStatus map[string]model.CheckStatus
		expErr    bool
	}{
		"a selected tool with its executable should pass": {
			files:    []string{conventions.HkxCExe},
			launcher: []string{"wine"},
			lookPath: lookPathOK,
			req:      doctor.Request{Tools: []model.ConverterTool{model.ToolHkxC}},
			expStatus: map[string]model.CheckStatus{
				"hkxc_executable": model.CheckStatusOK,
				"launcher":        model.CheckStatusOK,
				"temp_dir":        model.CheckStatusOK,
			},
		},

		"a selected tool without executable should be an error": {
			launcher: []string{"wine"},
			lookPath: lookPathOK,
			req:      doctor.Request{Tools: []model.ConverterTool{model.ToolHkxConv}},
			expStatus: map[string]model.CheckStatus{
				"hkxconv_executable": model.CheckStatusError,
				"launcher":           model.CheckStatusOK,
				"temp_dir":           model.CheckStatusOK,
			},
		},

		"HCT should check its filter set and DLL": {
			files:    []string{conventions.HCTFilterManagerExe, conventions.HCTSSEToLEFilterSet},
			goos:     "windows",
			req:      doctor.Request{Tools: []model.ConverterTool{model.ToolHCT}},
			lookPath: lookPathErr,
			expStatus: map[string]model.CheckStatus{
				"hct_executable":         model.CheckStatusOK,
				"hct_filter_set":         model.CheckStatusOK,
				"hct_filter_manager_dll": model.CheckStatusError,
				"launcher":               model.CheckStatusOK,
				"temp_dir":               model.CheckStatusOK,
			},
		},

		"checking all tools should only warn about missing ones": {
			files:    []string{conventions.HkxCmdExe},
			goos:     "linux",
			lookPath: lookPathOK,
			expStatus: map[string]model.CheckStatus{
				"hkxcmd_executable":         model.CheckStatusOK,
				"hct_executable":            model.CheckStatusWarning,
				"hct_filter_set":            model.CheckStatusWarning,
				"hct_filter_manager_dll":    model.CheckStatusWarning,
				"hkxpostprocess_executable": model.CheckStatusWarning,
				"hkxc_executable":           model.CheckStatusWarning,
				"hkxconv_executable":        model.CheckStatusWarning,
				"launcher":                  model.CheckStatusWarning,
				"temp_dir":                  model.CheckStatusOK,
			},
		},

		"a missing launcher should be an error": {
			files:    []string{conventions.HkxCExe},
			launcher: []string{"wine64"},
			lookPath: lookPathErr,
			req:      doctor.Request{Tools: []model.ConverterTool{model.ToolHkxC}},
			expStatus: map[string]model.CheckStatus{
				"hkxc_executable": model.CheckStatusOK,
				"launcher":        model.CheckStatusError,
				"temp_dir":        model.CheckStatusOK,
			},
		},

		"an unknown tool should fail": {
			req:    doctor.Request{Tools: []model.ConverterTool{"havok"}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			toolsDir := t.TempDir()
			for _, f := range test.files {
				require.NoError(os.WriteFile(filepath.Join(toolsDir, f), []byte("x"), 0o755))
			}
			paths := conventions.DefaultToolPaths(toolsDir)
			paths.Launcher = test.launcher

			svc, err := doctor.NewService(doctor.ServiceConfig{
				Paths:    paths,
				TempDir:  t.TempDir(),
				LookPath: test.lookPath,
				GOOS:     test.goos,
			})
			require.NoError(err)

			results, err := svc.Run(context.Background(), test.req)
			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)
			assert.Equal(test.expStatus, statusByID(results))
		})
	}
}

func TestSummarizeChecks(t *testing.T) {
	tests := map[string]struct {
		results   []model.CheckResult
		exp       model.CheckSummary
		expPassed bool
	}{
		"no results should pass": {
			expPassed: true,
		},
		"warnings should pass": {
			results: []model.CheckResult{
				{ID: "a", Status: model.CheckStatusOK},
				{ID: "b", Status: model.CheckStatusWarning},
				{ID: "c", Status: model.CheckStatusOK},
			},
			exp:       model.CheckSummary{OK: 2, Warnings: 1},
			expPassed: true,
		},
		"errors should not pass": {
			results: []model.CheckResult{
				{ID: "a", Status: model.CheckStatusError},
				{ID: "b", Status: model.CheckStatusWarning},
			},
			exp: model.CheckSummary{Warnings: 1, Errors: 1},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := model.SummarizeChecks(test.results)
			assert.Equal(t, test.exp, got)
			assert.Equal(t, test.expPassed, got.Passed())
		})
	}
}
