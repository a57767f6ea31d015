package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/robsolve/core/model"
)

// Format names an output encoding for simulated trajectories.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// Write encodes steps to w in the given format.
func Write(w io.Writer, f Format, steps []model.Step) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, steps)
	case FormatJSON:
		return WriteJSON(w, steps)
	}
	return fmt.Errorf("unsupported export format: %s", f)
}

// WriteJSON writes the trajectories to w in JSON format.
func WriteJSON(w io.Writer, steps []model.Step) error {
	enc := json.NewEncoder(w)
	return enc.Encode(steps)
}

// WriteCSV writes the trajectories to w in CSV format with a header row.
func WriteCSV(w io.Writer, steps []model.Step) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"agent", "period", "state", "choice", "reward"}); err != nil {
		return err
	}
	for _, s := range steps {
		rec := []string{
			strconv.Itoa(s.Agent),
			strconv.Itoa(s.Period),
			strconv.Itoa(s.State),
			strconv.Itoa(s.Choice),
			strconv.FormatFloat(s.Reward, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
