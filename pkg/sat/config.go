package sat

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

const (
	Kissat        = "kissat"
	Cadical       = "cadical"
	Minisat       = "minisat"
	Cryptominisat = "cryptominisat"
	GlucoseSimp   = "glucose-simp"
	Slime         = "slime"
	Ortoolsat     = "ortoolsat"
)

// Config holds the executable of every supported solver. Empty entries fall back to the solver's name, looked up in PATH.
type Config struct {
	KissatPath        string `mapstructure:"kissatPath"`
	CadicalPath       string `mapstructure:"cadicalPath"`
	MinisatPath       string `mapstructure:"minisatPath"`
	CryptominisatPath string `mapstructure:"cryptominisatPath"`
	GlucoseSimpPath   string `mapstructure:"glucoseSimpPath"`
	SlimePath         string `mapstructure:"slimePath"`
	OrtoolsatPath     string `mapstructure:"ortoolsatPath"`
}

// LoadConfig reads a JSON document such as {"kissatPath": "/opt/kissat/bin/kissat"}. An empty path yields the defaults.
func LoadConfig(path string) (Config, error) {
	var config Config
	if path == "" {
		return config, nil
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("cannot read solver config: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return config, fmt.Errorf("cannot parse solver config %v: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &config,
	})
	if err != nil {
		return config, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return config, fmt.Errorf("invalid solver config %v: %w", path, err)
	}
	return config, nil
}

// NewSolver returns the solver registered under name
func NewSolver(name string, config Config) (SATSolver, error) {
	switch name {
	case Kissat:
		return NewKissatSolver(orDefault(config.KissatPath, Kissat)), nil
	case Cadical:
		return NewCadicalSolver(orDefault(config.CadicalPath, Cadical)), nil
	case Minisat:
		return NewMinisatSolver(orDefault(config.MinisatPath, Minisat)), nil
	case Cryptominisat:
		return NewCryptominisatSolver(orDefault(config.CryptominisatPath, Cryptominisat)), nil
	case GlucoseSimp:
		return NewGlucoseSimpSolver(orDefault(config.GlucoseSimpPath, GlucoseSimp)), nil
	case Slime:
		return NewSlimeSolver(orDefault(config.SlimePath, Slime)), nil
	case Ortoolsat:
		return NewOrtoolsatSolver(orDefault(config.OrtoolsatPath, Ortoolsat)), nil
	}
	return nil, fmt.Errorf("unknown SAT solver \"%v\"", name)
}

func orDefault(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
