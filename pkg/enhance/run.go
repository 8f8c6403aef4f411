package enhance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	"github.com/xaionaro-go/dfenhance/pkg/syncer/implementations/gccphat"
)

type Options struct {
	// ModelBaseDir contains config.ini and the checkpoints; empty
	// means DefaultModelDir.
	ModelBaseDir string

	// OutputDir is created if missing; empty means the current directory.
	OutputDir string

	PostFilter      bool
	CompensateDelay bool

	// Backend is a registered noise suppression backend name or
	// noisesuppression.BackendAuto.
	Backend        string
	RuntimeLibrary string
	Threads        int

	// MeasureDelay enables measuring how much each output lags its
	// input; the result is logged and put into the report.
	MeasureDelay bool

	// ReportPath is where a YAML summary of the run is written; empty
	// means no report.
	ReportPath string

	Files []string
}

// Run loads the model and enhances every file in order, stopping at the
// first error.
func Run(
	ctx context.Context,
	opts Options,
) (_ret *Report, _err error) {
	runID := uuid.New().String()
	ctx = logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithField("run_id", runID))
	logger.Tracef(ctx, "Run")
	defer func() { logger.Tracef(ctx, "/Run: %v", _err) }()

	modelDir, err := ResolveModelDir(ctx, opts.ModelBaseDir)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(filepath.Join(modelDir, ConfigFileName), true)
	if err != nil {
		return nil, err
	}
	if opts.PostFilter {
		cfg.Set(config.SectionDeepFilterNet, "mask_pf", true)
	}
	modelParams, err := cfg.ModelParams()
	if err != nil {
		return nil, fmt.Errorf("unable to read the model parameters: %w", err)
	}
	state, err := dfstate.New(
		modelParams.SampleRate,
		modelParams.FFTSize,
		modelParams.HopSize,
		modelParams.NbERB,
		modelParams.MinNbERBFreqs,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the DF state: %w", err)
	}

	backend := opts.Backend
	if backend == "" {
		backend = noisesuppression.BackendAuto
	}
	model, backend, err := noisesuppression.Open(ctx, backend, noisesuppression.OpenParams{
		ModelDir:       modelDir,
		CheckpointDir:  filepath.Join(modelDir, CheckpointDir),
		Config:         cfg,
		ModelParams:    modelParams,
		State:          state,
		RuntimeLibrary: opts.RuntimeLibrary,
		Threads:        opts.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load the model: %w", err)
	}
	defer func() {
		if err := model.Close(); err != nil {
			_err = multierror.Append(_err, fmt.Errorf("unable to close the model: %w", err)).ErrorOrNil()
		}
	}()
	logger.Infof(ctx, "Model loaded")
	logger.Debugf(ctx, "backend: %s", backend)

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create the output directory '%s': %w", outputDir, err)
	}

	suffix := Suffix(modelDir, opts.PostFilter)
	report := &Report{
		RunID:           runID,
		StartedAt:       time.Now(),
		ModelBaseDir:    modelDir,
		Backend:         backend,
		Suffix:          suffix,
		PostFilter:      opts.PostFilter,
		CompensateDelay: opts.CompensateDelay,
	}
	defer func() {
		if opts.ReportPath == "" {
			return
		}
		if err := report.WriteFile(opts.ReportPath); err != nil {
			_err = multierror.Append(_err, err).ErrorOrNil()
		}
	}()

	enhancer := NewEnhancer(modelParams, state, model)
	if opts.MeasureDelay {
		enhancer.Syncer, err = gccphat.NewSyncer(audio.SampleRate(modelParams.SampleRate))
		if err != nil {
			return report, fmt.Errorf("unable to initialize the delay measurement: %w", err)
		}
	}
	for _, file := range opts.Files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := enhancer.Enhance(ctx, file, opts.CompensateDelay)
		if err != nil {
			return report, err
		}
		outPath, n, err := SaveAudio(ctx, file, result.Audio, outputDir, suffix)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, newFileReport(file, outPath, n, result))
	}
	return report, nil
}
