package conventions

import (
	"path/filepath"

	"github.com/slok/hkxbatch/internal/model"
)

const (
	// DefaultDataDir is the default hkxbatch data directory name (relative to home).
	DefaultDataDir = ".hkxbatch"
	// ToolsDir is the subdirectory where the converter executables live.
	ToolsDir = "tools"
	// ConfigFile is the tools configuration file name inside the data dir.
	ConfigFile = "config.yaml"
	// HistoryDBFile is the batch history database file name inside the data dir.
	HistoryDBFile = "history.db"

	// Converter executables.

	HkxCmdExe           = "hkxcmd.exe"
	HkxCExe             = "hkxc.exe"
	HkxConvExe          = "hkxconv.exe"
	HkxPostProcessExe   = "HavokBehaviorPostProcess.exe"
	HCTFilterManagerExe = "hctStandAloneFilterManager.exe"
	HCTFilterManagerDLL = "hctFilterManager.dll"
	HCTSSEToLEFilterSet = "_SSEtoLE.hko"

	// HCTOutputFile is the name HCT always writes its result to, in the
	// directory of the filter set.
	HCTOutputFile = "filename.hkx"

	// StagingFilePrefix prefixes the in-progress output files written next to
	// the final output.
	StagingFilePrefix = ".hkxbatch-"
	// HCTTempDirPattern is the pattern of the per job HCT working directories.
	HCTTempDirPattern = "hct_conversion_*"
)

// DefaultExecutables maps every tool to its executable file name.
var DefaultExecutables = map[model.ConverterTool]string{
	model.ToolHkxCmd:         HkxCmdExe,
	model.ToolHCT:            HCTFilterManagerExe,
	model.ToolHkxPostProcess: HkxPostProcessExe,
	model.ToolHkxC:           HkxCExe,
	model.ToolHkxConv:        HkxConvExe,
}

// DefaultToolPaths returns the tool locations inside toolsDir.
func DefaultToolPaths(toolsDir string) model.ToolPaths {
	exes := make(map[model.ConverterTool]string, len(DefaultExecutables))
	for tool, name := range DefaultExecutables {
		exes[tool] = filepath.Join(toolsDir, name)
	}

	return model.ToolPaths{
		Executables:         exes,
		SSEToLEHko:          filepath.Join(toolsDir, HCTSSEToLEFilterSet),
		HCTFilterManagerDLL: filepath.Join(toolsDir, HCTFilterManagerDLL),
	}
}

// DataFilePath returns the full path to a file inside the data directory.
func DataFilePath(dataDir, filename string) string {
	return filepath.Join(dataDir, filename)
}
