// Package deepfilternet runs exported DeepFilterNet models with
// ONNX Runtime.
package deepfilternet

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/dfenhance/pkg/audio"
	"github.com/xaionaro-go/dfenhance/pkg/dfstate"
	"github.com/xaionaro-go/dfenhance/pkg/noisesuppression"
	ort "github.com/yalue/onnxruntime_go"
)

const Name = "deepfilternet"

var (
	encoderInputNames     = []string{"feat_erb", "feat_spec"}
	encoderOutputNames    = []string{"e0", "e1", "e2", "e3", "emb", "c0", "lsnr"}
	erbDecoderInputNames  = []string{"emb", "e3", "e2", "e1", "e0"}
	erbDecoderOutputNames = []string{"m"}
	dfDecoderInputNames   = []string{"emb", "c0"}
	dfDecoderOutputNames  = []string{"coefs"}
)

const (
	encOutE0 = iota
	encOutE1
	encOutE2
	encOutE3
	encOutEmb
	encOutC0
	encOutLSNR
)

type DeepFilterNet struct {
	Locker        sync.Mutex
	Params        Params
	State         *dfstate.State
	NbDF          int
	Graphs        Graphs
	EncodingValue audio.Encoding
	ChannelsValue audio.Channel

	encoder    *ort.DynamicAdvancedSession
	erbDecoder *ort.DynamicAdvancedSession
	dfDecoder  *ort.DynamicAdvancedSession
	closed     bool
}

var _ noisesuppression.NoiseSuppression = (*DeepFilterNet)(nil)

func New(
	ctx context.Context,
	state *dfstate.State,
	nbDF int,
	graphs Graphs,
	params Params,
	runtimeLibrary string,
	threads int,
) (_ret *DeepFilterNet, _err error) {
	logger.Tracef(ctx, "New")
	defer func() { logger.Tracef(ctx, "/New: %v", _err) }()

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if nbDF <= 0 || nbDF > state.FreqSize() {
		return nil, fmt.Errorf("the amount of deep-filtered bins must be within (0, %d], got %d", state.FreqSize(), nbDF)
	}

	if err := acquireRuntime(ctx, runtimeLibrary); err != nil {
		return nil, err
	}

	n := &DeepFilterNet{
		Params: params,
		State:  state,
		NbDF:   nbDF,
		Graphs: graphs,
		EncodingValue: audio.EncodingPCM{
			PCMFormat:  audio.PCMFormatFloat32Native(),
			SampleRate: audio.SampleRate(state.SampleRate),
		},
	}
	if err := n.openSessions(ctx, threads); err != nil {
		return nil, multierror.Append(err, n.Close()).ErrorOrNil()
	}
	logger.Debugf(ctx, "loaded DeepFilterNet graphs: %s", spew.Sdump(graphs))
	return n, nil
}

func (n *DeepFilterNet) openSessions(ctx context.Context, threads int) error {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("unable to create session options: %w", err)
	}
	defer options.Destroy()
	if threads > 0 {
		if err := options.SetIntraOpNumThreads(threads); err != nil {
			return fmt.Errorf("unable to set the amount of threads to %d: %w", threads, err)
		}
	}

	for _, s := range []struct {
		Name        string
		Path        string
		InputNames  []string
		OutputNames []string
		Session     **ort.DynamicAdvancedSession
	}{
		{"encoder", n.Graphs.Encoder, encoderInputNames, encoderOutputNames, &n.encoder},
		{"ERB decoder", n.Graphs.ERBDecoder, erbDecoderInputNames, erbDecoderOutputNames, &n.erbDecoder},
		{"DF decoder", n.Graphs.DFDecoder, dfDecoderInputNames, dfDecoderOutputNames, &n.dfDecoder},
	} {
		if err := checkGraphIO(s.Path, s.InputNames, s.OutputNames); err != nil {
			return fmt.Errorf("the %s graph is not compatible: %w", s.Name, err)
		}
		session, err := ort.NewDynamicAdvancedSession(s.Path, s.InputNames, s.OutputNames, options)
		if err != nil {
			return fmt.Errorf("unable to load the %s from '%s': %w", s.Name, s.Path, err)
		}
		logger.Tracef(ctx, "loaded the %s from '%s'", s.Name, s.Path)
		*s.Session = session
	}
	return nil
}

func checkGraphIO(path string, inputNames, outputNames []string) error {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return fmt.Errorf("unable to read the inputs and outputs of '%s': %w", path, err)
	}
	has := func(infos []ort.InputOutputInfo, name string) bool {
		for _, info := range infos {
			if info.Name == name {
				return true
			}
		}
		return false
	}

	var mErr *multierror.Error
	for _, name := range inputNames {
		if !has(inputs, name) {
			mErr = multierror.Append(mErr, fmt.Errorf("no input '%s'", name))
		}
	}
	for _, name := range outputNames {
		if !has(outputs, name) {
			mErr = multierror.Append(mErr, fmt.Errorf("no output '%s'", name))
		}
	}
	return mErr.ErrorOrNil()
}

func (n *DeepFilterNet) Close() error {
	n.Locker.Lock()
	defer n.Locker.Unlock()
	if n.closed {
		return fmt.Errorf("double-close attempt")
	}
	n.closed = true

	var mErr *multierror.Error
	for _, session := range []*ort.DynamicAdvancedSession{n.encoder, n.erbDecoder, n.dfDecoder} {
		if session == nil {
			continue
		}
		if err := session.Destroy(); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	n.encoder, n.erbDecoder, n.dfDecoder = nil, nil, nil
	if err := releaseRuntime(); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	return mErr.ErrorOrNil()
}

func (n *DeepFilterNet) Encoding(context.Context) (audio.Encoding, error) {
	return n.EncodingValue, nil
}

func (n *DeepFilterNet) Channels(context.Context) (audio.Channel, error) {
	return n.ChannelsValue, nil
}

// ResetState only records the amount of channels: every SuppressNoise
// call runs the networks over the whole signal from scratch.
func (n *DeepFilterNet) ResetState(_ context.Context, channels audio.Channel) error {
	n.Locker.Lock()
	defer n.Locker.Unlock()
	n.ChannelsValue = channels
	return nil
}

func (n *DeepFilterNet) SuppressNoise(
	ctx context.Context,
	features *dfstate.Features,
) (_ret dfstate.Spectrogram, _err error) {
	logger.Tracef(ctx, "SuppressNoise, frames:%d", features.Frames())
	defer func() { logger.Tracef(ctx, "/SuppressNoise, frames:%d: %v", features.Frames(), _err) }()

	n.Locker.Lock()
	defer n.Locker.Unlock()
	if n.closed {
		return nil, fmt.Errorf("the model is closed")
	}
	if features.Channels() != int(n.ChannelsValue) {
		return nil, fmt.Errorf("expected %d channels, got %d", n.ChannelsValue, features.Channels())
	}

	result := make(dfstate.Spectrogram, features.Channels())
	for ch := range features.Spec {
		out, err := n.suppressNoiseOneChannel(ctx, features.Spec[ch], features.ERB[ch], features.Complex[ch])
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		result[ch] = out
	}
	return result, nil
}

func (n *DeepFilterNet) suppressNoiseOneChannel(
	ctx context.Context,
	spec [][]complex64,
	erb [][]float32,
	specFeat [][]complex64,
) (_ [][]complex64, _err error) {
	frames := len(spec)
	if frames == 0 {
		return [][]complex64{}, nil
	}
	nbERB := len(erb[0])
	widths := n.State.ERBWidths()

	featERB, featSpec := encoderInputs(erb, specFeat, n.Params.ConvLookahead)
	featERBTensor, err := ort.NewTensor(ort.NewShape(1, 1, int64(frames), int64(nbERB)), featERB)
	if err != nil {
		return nil, fmt.Errorf("unable to create the feat_erb tensor: %w", err)
	}
	defer featERBTensor.Destroy()
	featSpecTensor, err := ort.NewTensor(ort.NewShape(1, 2, int64(frames), int64(n.NbDF)), featSpec)
	if err != nil {
		return nil, fmt.Errorf("unable to create the feat_spec tensor: %w", err)
	}
	defer featSpecTensor.Destroy()

	encOutputs := make([]ort.Value, len(encoderOutputNames))
	defer destroyValues(encOutputs)
	if err := n.encoder.Run([]ort.Value{featERBTensor, featSpecTensor}, encOutputs); err != nil {
		return nil, fmt.Errorf("unable to run the encoder: %w", err)
	}
	if lsnr, err := tensorData(encOutputs[encOutLSNR]); err == nil {
		logger.Debugf(ctx, "mean local SNR estimate: %.2f dB", mean(lsnr))
	}

	erbOutputs := make([]ort.Value, len(erbDecoderOutputNames))
	defer destroyValues(erbOutputs)
	err = n.erbDecoder.Run([]ort.Value{
		encOutputs[encOutEmb],
		encOutputs[encOutE3],
		encOutputs[encOutE2],
		encOutputs[encOutE1],
		encOutputs[encOutE0],
	}, erbOutputs)
	if err != nil {
		return nil, fmt.Errorf("unable to run the ERB decoder: %w", err)
	}

	dfOutputs := make([]ort.Value, len(dfDecoderOutputNames))
	defer destroyValues(dfOutputs)
	err = n.dfDecoder.Run([]ort.Value{
		encOutputs[encOutEmb],
		encOutputs[encOutC0],
	}, dfOutputs)
	if err != nil {
		return nil, fmt.Errorf("unable to run the DF decoder: %w", err)
	}

	maskData, err := tensorData(erbOutputs[0])
	if err != nil {
		return nil, fmt.Errorf("invalid ERB decoder output: %w", err)
	}
	mask, err := unpackMask(maskData, frames, nbERB)
	if err != nil {
		return nil, err
	}
	if n.Params.PostFilter {
		for _, m := range mask {
			noisesuppression.PostFilter(m, float32(n.Params.PostFilterBeta))
		}
	}
	output, err := noisesuppression.MaskSpectrogram(spec, mask, widths)
	if err != nil {
		return nil, fmt.Errorf("unable to apply the mask: %w", err)
	}

	coefs, err := tensorData(dfOutputs[0])
	if err != nil {
		return nil, fmt.Errorf("invalid DF decoder output: %w", err)
	}
	if err := DeepFilter(spec, coefs, n.NbDF, n.Params.DFOrder, n.Params.DFLookahead, output); err != nil {
		return nil, fmt.Errorf("unable to apply the deep filter: %w", err)
	}
	return output, nil
}

func tensorData(v ort.Value) ([]float32, error) {
	t, ok := v.(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("expected a float32 tensor, got %T", v)
	}
	return t.GetData(), nil
}

func destroyValues(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			v.Destroy()
		}
	}
}

func mean(values []float32) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}
