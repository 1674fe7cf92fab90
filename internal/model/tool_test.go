package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/hkxbatch/internal/model"
)

func TestConverterToolCapabilities(t *testing.T) {
	tests := map[string]struct {
		tool       model.ConverterTool
		expInputs  []string
		expFormats []model.OutputFormat
	}{
		"hkxcmd should accept hkx, xml and kf and produce every format": {
			tool:       model.ToolHkxCmd,
			expInputs:  []string{"hkx", "xml", "kf"},
			expFormats: []model.OutputFormat{model.OutputFormatXML, model.OutputFormatSkyrimLE, model.OutputFormatSkyrimSE, model.OutputFormatKF},
		},

		"HCT should only convert hkx to LE": {
			tool:       model.ToolHCT,
			expInputs:  []string{"hkx"},
			expFormats: []model.OutputFormat{model.OutputFormatSkyrimLE},
		},

		"Post process should only convert hkx to SE": {
			tool:       model.ToolHkxPostProcess,
			expInputs:  []string{"hkx"},
			expFormats: []model.OutputFormat{model.OutputFormatSkyrimSE},
		},

		"hkxc should convert hkx and xml to xml, LE and SE": {
			tool:       model.ToolHkxC,
			expInputs:  []string{"hkx", "xml"},
			expFormats: []model.OutputFormat{model.OutputFormatXML, model.OutputFormatSkyrimLE, model.OutputFormatSkyrimSE},
		},

		"hkxconv should convert hkx and xml to xml and SE": {
			tool:       model.ToolHkxConv,
			expInputs:  []string{"hkx", "xml"},
			expFormats: []model.OutputFormat{model.OutputFormatXML, model.OutputFormatSkyrimSE},
		},

		"An unknown tool should have no capabilities": {
			tool: model.ConverterTool("havok2000"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expInputs, test.tool.AcceptedInputExtensions())
			assert.Equal(test.expFormats, test.tool.ProducibleOutputFormats())
			for _, f := range test.expFormats {
				assert.True(test.tool.Produces(f))
			}
		})
	}
}

func TestConverterToolAccepts(t *testing.T) {
	tests := map[string]struct {
		tool      model.ConverterTool
		path      string
		expAccept bool
	}{
		"An accepted extension should be accepted": {
			tool:      model.ToolHkxCmd,
			path:      "/mods/walk.kf",
			expAccept: true,
		},

		"Extensions should be case insensitive": {
			tool:      model.ToolHkxC,
			path:      "/mods/WALK.HKX",
			expAccept: true,
		},

		"A not accepted extension should not be accepted": {
			tool:      model.ToolHCT,
			path:      "/mods/walk.xml",
			expAccept: false,
		},

		"A file without extension should not be accepted": {
			tool:      model.ToolHkxCmd,
			path:      "/mods/walk",
			expAccept: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expAccept, test.tool.Accepts(test.path))
		})
	}
}

func TestOutputFormatRequiresSkeleton(t *testing.T) {
	tests := map[string]struct {
		format      model.OutputFormat
		expSkeleton bool
		expExt      string
	}{
		"XML should not need a skeleton":       {format: model.OutputFormatXML, expExt: "xml"},
		"Skyrim LE should not need a skeleton": {format: model.OutputFormatSkyrimLE, expExt: "hkx"},
		"Skyrim SE should not need a skeleton": {format: model.OutputFormatSkyrimSE, expExt: "hkx"},
		"KF should need a skeleton":            {format: model.OutputFormatKF, expSkeleton: true, expExt: "kf"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expSkeleton, test.format.RequiresSkeleton())
			assert.Equal(test.expExt, test.format.Extension())
		})
	}
}

func TestInputFilterMatches(t *testing.T) {
	tests := map[string]struct {
		filter   model.InputFilter
		tool     model.ConverterTool
		path     string
		expMatch bool
	}{
		"All should match the tool accepted extensions": {
			filter:   model.InputFilterAll,
			tool:     model.ToolHkxCmd,
			path:     "walk.kf",
			expMatch: true,
		},

		"All should not match extensions the tool doesn't accept": {
			filter:   model.InputFilterAll,
			tool:     model.ToolHCT,
			path:     "walk.kf",
			expMatch: false,
		},

		"An empty filter should behave like all": {
			filter:   "",
			tool:     model.ToolHkxC,
			path:     "walk.xml",
			expMatch: true,
		},

		"An extension filter should match its extension": {
			filter:   model.InputFilterXML,
			tool:     model.ToolHkxC,
			path:     "walk.XML",
			expMatch: true,
		},

		"An extension filter should not match other extensions": {
			filter:   model.InputFilterXML,
			tool:     model.ToolHkxC,
			path:     "walk.hkx",
			expMatch: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expMatch, test.filter.Matches(test.tool, test.path))
		})
	}
}

func TestInputFilters(t *testing.T) {
	assert.Equal(t, []model.InputFilter{model.InputFilterAll, model.InputFilterHKX, model.InputFilterXML, model.InputFilterKF}, model.InputFilters(model.ToolHkxCmd))
	assert.Equal(t, []model.InputFilter{model.InputFilterAll, model.InputFilterHKX}, model.InputFilters(model.ToolHCT))
}

func TestParseConverterTool(t *testing.T) {
	tests := map[string]struct {
		name    string
		expTool model.ConverterTool
		expErr  error
	}{
		"A known tool should be parsed":          {name: "hkxc", expTool: model.ToolHkxC},
		"Names should be case insensitive":       {name: " HCT ", expTool: model.ToolHCT},
		"An unknown tool should fail validation": {name: "havok", expErr: model.ErrValidation},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			tool, err := model.ParseConverterTool(test.name)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expTool, tool)
		})
	}
}
