package enhance

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Report struct {
	RunID           string       `yaml:"run_id"`
	StartedAt       time.Time    `yaml:"started_at"`
	ModelBaseDir    string       `yaml:"model_base_dir"`
	Backend         string       `yaml:"backend"`
	Suffix          string       `yaml:"suffix"`
	PostFilter      bool         `yaml:"post_filter"`
	CompensateDelay bool         `yaml:"compensate_delay"`
	Files           []FileReport `yaml:"files"`
}

type FileReport struct {
	Input            string  `yaml:"input"`
	Output           string  `yaml:"output"`
	InputSampleRate  uint32  `yaml:"input_sample_rate"`
	OutputSampleRate uint32  `yaml:"output_sample_rate"`
	Channels         uint32  `yaml:"channels"`
	DurationSeconds  float64 `yaml:"duration_seconds"`
	ProcessingTime   float64 `yaml:"processing_seconds"`
	RTFactor         float64 `yaml:"rt_factor"`
	BytesWritten     int64   `yaml:"bytes_written"`
	OutputDelay      float64 `yaml:"output_delay_samples,omitempty"`
	DelayConfidence  float64 `yaml:"delay_confidence,omitempty"`
}

func newFileReport(input, output string, bytesWritten int64, result *Result) FileReport {
	return FileReport{
		Input:            input,
		Output:           output,
		InputSampleRate:  uint32(result.InputSampleRate),
		OutputSampleRate: uint32(result.Audio.SampleRate),
		Channels:         uint32(result.Audio.Channels()),
		DurationSeconds:  result.InputDuration.Seconds(),
		ProcessingTime:   result.ProcessingTime.Seconds(),
		RTFactor:         result.RTFactor,
		BytesWritten:     bytesWritten,
		OutputDelay:      result.OutputDelay,
		DelayConfidence:  result.DelayConfidence,
	}
}

func (r *Report) WriteFile(path string) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("unable to serialize the report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("unable to write the report to '%s': %w", path, err)
	}
	return nil
}

// ReadReport parses a report written by Report.WriteFile.
func ReadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	var r Report
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	return &r, nil
}
