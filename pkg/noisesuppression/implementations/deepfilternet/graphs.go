package deepfilternet

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	EncoderFileName    = "enc.onnx"
	ERBDecoderFileName = "erb_dec.onnx"
	DFDecoderFileName  = "df_dec.onnx"
)

// Graphs are the paths of the exported sub-networks of a model.
type Graphs struct {
	Encoder    string
	ERBDecoder string
	DFDecoder  string
}

// GraphDirs returns the directories searched for the exported graphs,
// in the order of preference.
func GraphDirs(modelDir, checkpointDir string) []string {
	var dirs []string
	if checkpointDir != "" {
		dirs = append(dirs, checkpointDir)
	}
	return append(dirs,
		filepath.Join(modelDir, "export"),
		modelDir,
	)
}

// FindGraphs returns the graphs from the first directory which contains
// all of them.
func FindGraphs(modelDir, checkpointDir string) (Graphs, error) {
	dirs := GraphDirs(modelDir, checkpointDir)
	for _, dir := range dirs {
		g := Graphs{
			Encoder:    filepath.Join(dir, EncoderFileName),
			ERBDecoder: filepath.Join(dir, ERBDecoderFileName),
			DFDecoder:  filepath.Join(dir, DFDecoderFileName),
		}
		if isFile(g.Encoder) && isFile(g.ERBDecoder) && isFile(g.DFDecoder) {
			return g, nil
		}
	}
	return Graphs{}, fmt.Errorf("none of %v contains all of '%s', '%s' and '%s'", dirs, EncoderFileName, ERBDecoderFileName, DFDecoderFileName)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
