package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/hkxbatch/internal/model"
)

func TestBatchRequestValidate(t *testing.T) {
	valid := func() model.BatchRequest {
		return model.BatchRequest{
			Inputs:     []string{"/mods/walk.hkx"},
			OutputRoot: "/out",
			Tool:       model.ToolHkxCmd,
			Format:     model.OutputFormatSkyrimSE,
		}
	}

	tests := map[string]struct {
		req    func() model.BatchRequest
		expErr bool
	}{
		"A valid request should not fail": {
			req: valid,
		},

		"A request with suffix, extension and timeout should not fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Suffix = "_se"
				r.ExtensionOverride = ".hkx"
				r.JobTimeout = time.Minute
				return r
			},
		},

		"Missing inputs should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Inputs = nil
				return r
			},
			expErr: true,
		},

		"Missing output root should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.OutputRoot = ""
				return r
			},
			expErr: true,
		},

		"An unknown tool should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Tool = "havok2000"
				return r
			},
			expErr: true,
		},

		"An unknown format should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Format = "fbx"
				return r
			},
			expErr: true,
		},

		"KF output without skeleton should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Format = model.OutputFormatKF
				return r
			},
			expErr: true,
		},

		"KF output with skeleton should not fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Format = model.OutputFormatKF
				r.SkeletonPath = "/mods/skeleton.hkx"
				return r
			},
		},

		"A suffix with a path separator should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Suffix = "x/../../../etc/evil"
				return r
			},
			expErr: true,
		},

		"A suffix with a windows path separator should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.Suffix = `..\evil`
				return r
			},
			expErr: true,
		},

		"An extension override with a path separator should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.ExtensionOverride = "/../../etc/evil"
				return r
			},
			expErr: true,
		},

		"A parent directory extension override should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.ExtensionOverride = "..."
				return r
			},
			expErr: true,
		},

		"A negative job timeout should fail": {
			req: func() model.BatchRequest {
				r := valid()
				r.JobTimeout = -time.Second
				return r
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.req().Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
