package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/microtubule/config"
	"github.com/pthm-cable/microtubule/network"
)

// csvFile appends records to a CSV file, writing the header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

func writeRecords[T any](c *csvFile, records []T) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir    string
	trials *csvFile
	sweep  *csvFile
	perf   *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.trials, err = createCSV(dir, "trials.csv"); err != nil {
		return nil, err
	}
	if om.sweep, err = createCSV(dir, "sweep.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.perf, err = createCSV(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTrial writes a transport run to trials.csv.
func (om *OutputManager) WriteTrial(r TrialRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.trials, []TrialRecord{r}); err != nil {
		return fmt.Errorf("writing trial: %w", err)
	}
	return nil
}

// WriteSweep writes persistence sweep points to sweep.csv.
func (om *OutputManager) WriteSweep(points []network.SweepPoint) error {
	if om == nil || len(points) == 0 {
		return nil
	}
	if err := writeRecords(om.sweep, points); err != nil {
		return fmt.Errorf("writing sweep: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, label string) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(om.perf, []PerfStatsCSV{stats.ToCSV(label)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// Path returns the path of name inside the output directory.
func (om *OutputManager) Path(name string) string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, name)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.trials, om.sweep, om.perf} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
