package deepfilternet

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	ort "github.com/yalue/onnxruntime_go"
)

// The ONNX Runtime environment is process-wide, so it is shared by all
// the instances and destroyed when the last one is closed.
var (
	runtimeLocker sync.Mutex
	runtimeUsers  int
)

func acquireRuntime(ctx context.Context, libraryPath string) error {
	runtimeLocker.Lock()
	defer runtimeLocker.Unlock()

	if runtimeUsers == 0 && !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		logger.Debugf(ctx, "initializing ONNX Runtime (library: '%s')", libraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("unable to initialize ONNX Runtime: %w", err)
		}
	}
	runtimeUsers++
	return nil
}

func releaseRuntime() error {
	runtimeLocker.Lock()
	defer runtimeLocker.Unlock()

	if runtimeUsers <= 0 {
		return fmt.Errorf("ONNX Runtime is released more times than acquired")
	}
	runtimeUsers--
	if runtimeUsers > 0 {
		return nil
	}
	if err := ort.DestroyEnvironment(); err != nil {
		return fmt.Errorf("unable to destroy ONNX Runtime environment: %w", err)
	}
	return nil
}
