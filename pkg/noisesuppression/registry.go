package noisesuppression

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/config"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
)

// BackendAuto selects the highest priority backend which detects
// a usable model.
const BackendAuto = "auto"

// OpenParams is everything a backend may need to load a model.
type OpenParams struct {
	// ModelDir is the model base directory.
	ModelDir string

	// CheckpointDir is where the model weights are expected.
	CheckpointDir string

	Config      *config.Config
	ModelParams config.ModelParams
	State       *dfstate.State

	// RuntimeLibrary is the path to a shared library of the neural
	// network runtime; empty means the platform default.
	RuntimeLibrary string

	// Threads limits the intra-op parallelism; zero means the
	// runtime default.
	Threads int
}

func (p OpenParams) Encoding() audio.Encoding {
	return audio.EncodingPCM{
		PCMFormat:  audio.PCMFormatFloat32Native(),
		SampleRate: audio.SampleRate(p.ModelParams.SampleRate),
	}
}

type Factory interface {
	Name() string

	// Detect reports whether the model directory looks like it
	// contains a model for this backend.
	Detect(context.Context, OpenParams) bool

	New(context.Context, OpenParams) (NoiseSuppression, error)
}

type factoryWithPriority struct {
	Priority int
	Factory
}

var (
	factoryRegistry       = map[string]factoryWithPriority{}
	factoryRegistryLocker sync.Mutex
)

func RegisterFactory(
	priority int,
	factory Factory,
) {
	factoryRegistryLocker.Lock()
	defer factoryRegistryLocker.Unlock()
	name := factory.Name()
	if _, ok := factoryRegistry[name]; ok {
		panic(fmt.Errorf("there is already registered a noise suppression factory with name '%s'", name))
	}
	factoryRegistry[name] = factoryWithPriority{
		Priority: priority,
		Factory:  factory,
	}
}

// Factories returns the registered factories, highest priority first.
func Factories() []Factory {
	factoryRegistryLocker.Lock()
	defer factoryRegistryLocker.Unlock()

	var factoriesWithPriorities []factoryWithPriority
	for _, factory := range factoryRegistry {
		factoriesWithPriorities = append(factoriesWithPriorities, factory)
	}
	sort.Slice(factoriesWithPriorities, func(i, j int) bool {
		if factoriesWithPriorities[i].Priority != factoriesWithPriorities[j].Priority {
			return factoriesWithPriorities[i].Priority > factoriesWithPriorities[j].Priority
		}
		return factoriesWithPriorities[i].Name() < factoriesWithPriorities[j].Name()
	})

	var factories []Factory
	for _, factory := range factoriesWithPriorities {
		factories = append(factories, factory.Factory)
	}
	return factories
}

func FactoryByName(name string) (Factory, bool) {
	factoryRegistryLocker.Lock()
	defer factoryRegistryLocker.Unlock()
	f, ok := factoryRegistry[name]
	if !ok {
		return nil, false
	}
	return f.Factory, true
}

// Open loads the model with the backend of the given name, or with the
// first backend that detects and successfully loads a model if the name
// is BackendAuto. It returns the name of the backend used.
func Open(
	ctx context.Context,
	name string,
	params OpenParams,
) (_ret NoiseSuppression, _name string, _err error) {
	logger.Tracef(ctx, "Open: '%s'", name)
	defer func() { logger.Tracef(ctx, "/Open: '%s': %s %v", name, _name, _err) }()

	if name != BackendAuto {
		factory, ok := FactoryByName(name)
		if !ok {
			return nil, "", fmt.Errorf("unknown noise suppression backend '%s'", name)
		}
		ns, err := factory.New(ctx, params)
		if err != nil {
			return nil, "", fmt.Errorf("unable to initialize backend '%s': %w", name, err)
		}
		return ns, name, nil
	}

	var mErr *multierror.Error
	for _, factory := range Factories() {
		if !factory.Detect(ctx, params) {
			logger.Debugf(ctx, "backend '%s' did not detect a model in '%s'", factory.Name(), params.ModelDir)
			continue
		}
		ns, err := factory.New(ctx, params)
		logger.Debugf(ctx, "initializing backend '%s' result is %v", factory.Name(), err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize backend '%s': %w", factory.Name(), err))
			continue
		}
		return ns, factory.Name(), nil
	}

	if err := mErr.ErrorOrNil(); err != nil {
		return nil, "", fmt.Errorf("was unable to initialize any noise suppression backend: %w", err)
	}
	return nil, "", fmt.Errorf("no noise suppression backend recognized a model in '%s'", params.ModelDir)
}
