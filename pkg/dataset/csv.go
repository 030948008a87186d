package dataset

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/exoscan/exoscan/internal/types"
)

var csvHeader = []string{"time", "rv", "rv_error"}

// LoadObservations reads a (time, rv, rv_error) CSV table. Malformed
// rows are skipped with a warning; a file with fewer than minPoints
// usable rows is rejected.
func LoadObservations(filename string, minPoints int) (types.Observations, error) {
	var obs types.Observations

	file, err := os.Open(filename)
	if err != nil {
		return obs, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return obs, err
	}

	if len(records) < 2 {
		return obs, fmt.Errorf("insufficient data in file %s", filename)
	}

	// Skip header row
	for i, record := range records[1:] {
		if len(record) < 3 {
			log.Printf("Warning: skipping incomplete record %d", i+1)
			continue
		}

		t, rv, rvErr, err := parseObservationRecord(record)
		if err != nil {
			log.Printf("Warning: failed to parse record %d: %v", i+1, err)
			continue
		}

		obs.Time = append(obs.Time, t)
		obs.RV = append(obs.RV, rv)
		obs.RVError = append(obs.RVError, rvErr)
	}

	if err := obs.Validate(minPoints); err != nil {
		return obs, fmt.Errorf("file %s: %w", filename, err)
	}
	return obs, nil
}

// parseObservationRecord parses a single observation row.
func parseObservationRecord(record []string) (t, rv, rvErr float64, err error) {
	if t, err = strconv.ParseFloat(record[0], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid time: %w", err)
	}
	if rv, err = strconv.ParseFloat(record[1], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid rv: %w", err)
	}
	if rvErr, err = strconv.ParseFloat(record[2], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid rv_error: %w", err)
	}
	if rvErr <= 0 {
		return 0, 0, 0, fmt.Errorf("rv_error must be positive, got %g", rvErr)
	}
	return t, rv, rvErr, nil
}

// SaveObservations writes an observation series as a CSV table.
func SaveObservations(filename string, obs types.Observations) error {
	if len(obs.Time) != len(obs.RV) || len(obs.Time) != len(obs.RVError) {
		return fmt.Errorf("%w: mismatched series lengths", types.ErrInvalidArgument)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for i := range obs.Time {
		row := []string{
			strconv.FormatFloat(obs.Time[i], 'g', -1, 64),
			strconv.FormatFloat(obs.RV[i], 'g', -1, 64),
			strconv.FormatFloat(obs.RVError[i], 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
