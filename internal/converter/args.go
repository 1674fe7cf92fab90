package converter

import (
	"context"
	"fmt"

	"github.com/slok/hkxbatch/internal/log"
	"github.com/slok/hkxbatch/internal/model"
	"github.com/slok/hkxbatch/internal/utils/file"
)

// argsFunc builds the tool arguments to convert the job writing into out.
type argsFunc func(job model.ConversionJob, out string) ([]string, error)

// stagedStrategy is used by the tools that take explicit input and output paths.
// The tool writes into a staging file that is moved to the output on success.
type stagedStrategy struct {
	run    toolRunner
	args   argsFunc
	logger log.Logger
}

func (s stagedStrategy) convert(ctx context.Context, job model.ConversionJob) error {
	staging := stagingPath(job.OutputPath, job.ID)
	args, err := s.args(job, staging)
	if err != nil {
		return err
	}

	if err := file.EnsureParentDir(job.OutputPath); err != nil {
		return ioError("could not create output directory", err)
	}
	defer removeStaging(s.logger, staging)

	if err := s.run.run(ctx, args, ""); err != nil {
		return err
	}

	if !file.NonEmptyFile(staging) {
		return fmt.Errorf("%s exited successfully without writing %q: %w", s.run.tool.Label(), staging, model.ErrOutputMissing)
	}

	if err := file.Move(staging, job.OutputPath); err != nil {
		return ioError("could not move output into place", err)
	}

	return nil
}

// hkxcmdArgs builds the hkxcmd arguments. Keyframe direction depends on the input
// extension: KF input is always imported back into HKX, any other input exported
// to KF when the KF format is requested.
func hkxcmdArgs(job model.ConversionJob, out string) ([]string, error) {
	kfInput := model.FileExtension(job.InputPath) == model.ExtKF

	switch {
	case kfInput:
		if job.SkeletonPath == "" {
			return nil, fmt.Errorf("skeleton file is required to convert KF files: %w", model.ErrValidation)
		}
		return []string{"ConvertKF", job.SkeletonPath, job.InputPath, out, "-v:" + hkxcmdVersion(job.Format)}, nil
	case job.Format == model.OutputFormatKF:
		if job.SkeletonPath == "" {
			return nil, fmt.Errorf("skeleton file is required to export KF files: %w", model.ErrValidation)
		}
		return []string{"exportkf", job.SkeletonPath, job.InputPath, out}, nil
	default:
		return []string{"convert", "-i", job.InputPath, "-o", out, "-v:" + hkxcmdVersion(job.Format)}, nil
	}
}

func hkxcmdVersion(f model.OutputFormat) string {
	switch f {
	case model.OutputFormatXML:
		return "XML"
	case model.OutputFormatSkyrimLE:
		return "WIN32"
	default:
		// KF imports are written as SE HKX.
		return "AMD64"
	}
}

func hkxcArgs(job model.ConversionJob, out string) ([]string, error) {
	var format string
	switch job.Format {
	case model.OutputFormatXML:
		format = "xml"
	case model.OutputFormatSkyrimLE:
		format = "win32"
	case model.OutputFormatSkyrimSE:
		format = "amd64"
	default:
		return nil, fmt.Errorf("hkxc can't produce %s: %w", job.Format.Label(), model.ErrUnsupportedConversion)
	}

	return []string{"convert", "--input", job.InputPath, "--output", out, "--format", format}, nil
}

func hkxconvArgs(job model.ConversionJob, out string) ([]string, error) {
	var format string
	switch job.Format {
	case model.OutputFormatXML:
		format = "xml"
	case model.OutputFormatSkyrimSE:
		format = "hkx"
	default:
		return nil, fmt.Errorf("hkxconv can't produce %s: %w", job.Format.Label(), model.ErrUnsupportedConversion)
	}

	return []string{"convert", job.InputPath, out, "-v", format}, nil
}
