package converter

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/utils/file"
)

// inPlaceStrategy runs HavokBehaviorPostProcess, which rewrites the file it is given.
// The input is copied to a staging file, mutated there and moved to the output.
type inPlaceStrategy struct {
	run    toolRunner
	logger log.Logger
}

func (s inPlaceStrategy) convert(ctx context.Context, job model.ConversionJob) error {
	// Copying a file onto itself would hide a failed conversion.
	if filepath.Clean(job.InputPath) == filepath.Clean(job.OutputPath) {
		return fmt.Errorf("%q: %w", job.InputPath, model.ErrSamePath)
	}

	if err := file.EnsureParentDir(job.OutputPath); err != nil {
		return ioError("could not create output directory", err)
	}

	staging := stagingPath(job.OutputPath, job.ID)
	defer removeStaging(s.logger, staging)

	copied, err := file.CopyFile(job.InputPath, staging)
	if err != nil {
		return ioError("could not copy input file to output location", err)
	}
	s.logger.Debugf("Copied %d bytes to %q", copied, staging)

	if err := s.run.run(ctx, []string{"--platformAmd64", staging, staging}, ""); err != nil {
		return err
	}

	after, err := file.Size(staging)
	if err != nil {
		return fmt.Errorf("%s left no file at %q: %w", s.run.tool.Label(), staging, model.ErrOutputMissing)
	}

	// Same size is a hint, not a proof, of a conversion that did nothing.
	if after == copied {
		s.logger.Warningf("Output file size is the same as input file size (%d bytes), conversion may not have worked: %q", after, job.InputPath)
	} else {
		s.logger.Debugf("File size changed from %d to %d bytes", copied, after)
	}

	if err := file.Move(staging, job.OutputPath); err != nil {
		return ioError("could not move output into place", err)
	}

	return nil
}
