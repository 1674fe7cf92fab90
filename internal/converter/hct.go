package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/utils/file"
)

// fixedOutputStrategy runs HCT, which always writes the same file name next to its
// filter set. Every job gets its own working directory with a private copy of the
// filter set, so concurrent jobs don't overwrite each other.
type fixedOutputStrategy struct {
	run       toolRunner
	filterSet string
	tempDir   string
	logger    log.Logger
}

func (s fixedOutputStrategy) convert(ctx context.Context, job model.ConversionJob) error {
	workDir, err := os.MkdirTemp(s.tempDir, conventions.HCTTempDirPattern)
	if err != nil {
		return ioError("could not create temporary directory for HCT conversion", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Errorf("Could not remove HCT working directory %q: %s", workDir, err)
		}
	}()

	filterSetName := filepath.Base(s.filterSet)
	if _, err := file.CopyFile(s.filterSet, filepath.Join(workDir, filterSetName)); err != nil {
		return ioError("could not copy filter set to temporary directory", err)
	}

	s.logger.Debugf("HCT working directory %q using filter set %q", workDir, filterSetName)

	// The filter set is referenced by name, relative to the working directory.
	if err := s.run.run(ctx, []string{job.InputPath, "-s", filterSetName}, workDir); err != nil {
		return err
	}

	produced := filepath.Join(workDir, conventions.HCTOutputFile)
	if !file.NonEmptyFile(produced) {
		return fmt.Errorf("HCT did not produce expected output file %q: %w", produced, model.ErrOutputMissing)
	}

	if err := file.EnsureParentDir(job.OutputPath); err != nil {
		return ioError("could not create output directory", err)
	}
	if err := file.Move(produced, job.OutputPath); err != nil {
		return ioError("could not move HCT output into place", err)
	}

	return nil
}
