package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/dfenhance/pkg/enhance"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	_ "github.com/xaionaro-go/dfenhance/pkg/noisesuppression/implementations/deepfilternet"
	_ "github.com/xaionaro-go/dfenhance/pkg/noisesuppression/implementations/rnnoise"
	_ "github.com/xaionaro-go/dfenhance/pkg/noisesuppression/implementations/spectral"
	"github.com/xaionaro-go/observability"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	modelBaseDir := pflag.StringP("model-base-dir", "m", "", "Model directory containing checkpoints and config. By default, the pretrained model next to the executable is used.")
	postFilter := pflag.Bool("pf", false, "Post-filter that slightly over-attenuates very noisy sections.")
	outputDir := pflag.StringP("output-dir", "o", "", "Directory in which the enhanced audio files will be stored.")
	compensateDelay := pflag.BoolP("compensate-delay", "d", false, "Add some padding to compensate the delay introduced by the real-time STFT/ISTFT implementation.")
	logging := strToBool(true)
	pflag.VarP(&logging, "logging", "l", "Logging verbosity: y, yes, t, true, on, 1 or n, no, f, false, off, 0")
	backend := pflag.String("backend", noisesuppression.BackendAuto, "Noise suppression backend: auto, deepfilternet, spectral, rnnoise or dummy")
	runtimeLibrary := pflag.String("onnxruntime-lib", os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"), "Path to the ONNX Runtime shared library")
	threads := pflag.Int("threads", 0, "Amount of threads used by the neural network runtime; zero means the runtime default")
	measureDelay := pflag.Bool("measure-delay", false, "Measure how much each enhanced file lags its input and add it to the report")
	reportPath := pflag.String("report", "", "Write a YAML report of the run to this file")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	pflag.Parse()

	if pflag.NArg() == 0 {
		panic(fmt.Errorf("expected at least one argument: <noisy-audio-file> [<noisy-audio-file> ...]"))
	}

	l, closer, err := newLogger(loggerLevel, bool(logging), "")
	assertNoError(err)
	ctx := logger.CtxWithLogger(context.Background(), l)

	modelDir, err := enhance.ResolveModelDir(ctx, *modelBaseDir)
	assertNoError(err)
	assertNoError(closer.Close())

	l, closer, err = newLogger(loggerLevel, bool(logging), filepath.Join(modelDir, enhance.LogFileName))
	assertNoError(err)
	defer closer.Close()
	ctx = logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	_, err = enhance.Run(ctx, enhance.Options{
		ModelBaseDir:    modelDir,
		OutputDir:       *outputDir,
		PostFilter:      *postFilter,
		CompensateDelay: *compensateDelay,
		Backend:         *backend,
		RuntimeLibrary:  *runtimeLibrary,
		Threads:         *threads,
		MeasureDelay:    *measureDelay,
		ReportPath:      *reportPath,
		Files:           pflag.Args(),
	})
	assertNoError(err)
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
