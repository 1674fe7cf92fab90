package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ConverterTool identifies the external program family that handles a conversion.
type ConverterTool string

const (
	// ToolHkxCmd converts between HKX flavours, XML and keyframe (KF) files.
	ToolHkxCmd ConverterTool = "hkxcmd"
	// ToolHCT is the Havok Content Tools standalone filter manager. It always writes
	// a fixed output file name in its working directory.
	ToolHCT ConverterTool = "hct"
	// ToolHkxPostProcess is HavokBehaviorPostProcess, it rewrites a file in place.
	ToolHkxPostProcess ConverterTool = "hkxpostprocess"
	// ToolHkxC converts animation and behavior HKX files from/to XML.
	ToolHkxC ConverterTool = "hkxc"
	// ToolHkxConv converts SE behavior HKX files from/to XML.
	ToolHkxConv ConverterTool = "hkxconv"
)

// Tools returns all the known converter tools in presentation order.
func Tools() []ConverterTool {
	return []ConverterTool{ToolHkxCmd, ToolHCT, ToolHkxPostProcess, ToolHkxC, ToolHkxConv}
}

// ParseConverterTool returns the tool identified by s.
func ParseConverterTool(s string) (ConverterTool, error) {
	t := ConverterTool(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tools() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown converter tool %q: %w", s, ErrValidation)
}

// Label returns the human name of the tool.
func (t ConverterTool) Label() string {
	switch t {
	case ToolHkxCmd:
		return "hkxcmd"
	case ToolHCT:
		return "HavokContentTools"
	case ToolHkxPostProcess:
		return "HavokBehaviorPostProcess"
	case ToolHkxC:
		return "hkxc"
	case ToolHkxConv:
		return "hkxconv"
	default:
		return string(t)
	}
}

// Help returns a one line description of what the tool converts.
func (t ConverterTool) Help() string {
	switch t {
	case ToolHkxCmd:
		return "LE animation HKX -> SE animation HKX || .kf || .xml (KF requires skeleton file)"
	case ToolHCT:
		return "SE animation HKX -> LE animation HKX"
	case ToolHkxPostProcess:
		return "LE animation HKX -> SE animation HKX"
	case ToolHkxC:
		return "SE animation/behavior HKX <-> LE animation/behavior HKX <-> .xml"
	case ToolHkxConv:
		return "SE behavior HKX <-> .xml"
	default:
		return ""
	}
}

// AcceptedInputExtensions returns the input file extensions (without dot) the tool accepts.
func (t ConverterTool) AcceptedInputExtensions() []string {
	switch t {
	case ToolHkxCmd:
		return []string{ExtHKX, ExtXML, ExtKF}
	case ToolHkxC, ToolHkxConv:
		return []string{ExtHKX, ExtXML}
	case ToolHCT, ToolHkxPostProcess:
		return []string{ExtHKX}
	default:
		return nil
	}
}

// ProducibleOutputFormats returns the formats the tool can produce, in presentation order.
func (t ConverterTool) ProducibleOutputFormats() []OutputFormat {
	switch t {
	case ToolHkxCmd:
		return []OutputFormat{OutputFormatXML, OutputFormatSkyrimLE, OutputFormatSkyrimSE, OutputFormatKF}
	case ToolHkxC:
		return []OutputFormat{OutputFormatXML, OutputFormatSkyrimLE, OutputFormatSkyrimSE}
	case ToolHkxConv:
		return []OutputFormat{OutputFormatXML, OutputFormatSkyrimSE}
	case ToolHCT:
		return []OutputFormat{OutputFormatSkyrimLE}
	case ToolHkxPostProcess:
		return []OutputFormat{OutputFormatSkyrimSE}
	default:
		return nil
	}
}

// Accepts returns true if the tool accepts the extension of path as input.
func (t ConverterTool) Accepts(path string) bool {
	ext := FileExtension(path)
	for _, e := range t.AcceptedInputExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Produces returns true if the tool can produce the format.
func (t ConverterTool) Produces(f OutputFormat) bool {
	for _, pf := range t.ProducibleOutputFormats() {
		if pf == f {
			return true
		}
	}
	return false
}

// Input file extensions.
const (
	ExtHKX = "hkx"
	ExtXML = "xml"
	ExtKF  = "kf"
)

// FileExtension returns the lowercased extension of path without the leading dot.
func FileExtension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// OutputFormat is the target representation of a conversion.
type OutputFormat string

const (
	OutputFormatXML      OutputFormat = "xml"
	OutputFormatSkyrimLE OutputFormat = "le"
	OutputFormatSkyrimSE OutputFormat = "se"
	OutputFormatKF       OutputFormat = "kf"
)

// OutputFormats returns all the known output formats.
func OutputFormats() []OutputFormat {
	return []OutputFormat{OutputFormatXML, OutputFormatSkyrimLE, OutputFormatSkyrimSE, OutputFormatKF}
}

// ParseOutputFormat returns the format identified by s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range OutputFormats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q: %w", s, ErrValidation)
}

// Extension returns the default file extension (without dot) for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatXML:
		return ExtXML
	case OutputFormatSkyrimLE, OutputFormatSkyrimSE:
		return ExtHKX
	case OutputFormatKF:
		return ExtKF
	default:
		return ""
	}
}

// Label returns the human name of the format.
func (f OutputFormat) Label() string {
	switch f {
	case OutputFormatXML:
		return "XML"
	case OutputFormatSkyrimLE:
		return "Skyrim LE"
	case OutputFormatSkyrimSE:
		return "Skyrim SE"
	case OutputFormatKF:
		return "KF"
	default:
		return string(f)
	}
}

// RequiresSkeleton returns true if producing the format needs a skeleton reference file.
func (f OutputFormat) RequiresSkeleton() bool {
	return f == OutputFormatKF
}

// InputFilter restricts which files are picked up when ingesting folders.
type InputFilter string

const (
	// InputFilterAll accepts every extension the selected tool accepts.
	InputFilterAll InputFilter = "all"
	InputFilterHKX InputFilter = "hkx"
	InputFilterXML InputFilter = "xml"
	InputFilterKF  InputFilter = "kf"
)

// InputFilters returns the filters available for a tool.
func InputFilters(t ConverterTool) []InputFilter {
	filters := []InputFilter{InputFilterAll}
	for _, ext := range t.AcceptedInputExtensions() {
		filters = append(filters, InputFilter(ext))
	}
	return filters
}

// Matches returns true if path passes the filter for the tool.
func (f InputFilter) Matches(t ConverterTool, path string) bool {
	if f == "" || f == InputFilterAll {
		return t.Accepts(path)
	}
	return FileExtension(path) == string(f)
}
