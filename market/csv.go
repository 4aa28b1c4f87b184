package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCandlesCSV reads candle rows:
//
//	time,open,high,low,close,volume
//
// where time is RFC3339 or RFC3339Nano. Header row ("time,...") is allowed.
// Empty/short rows are skipped; a malformed numeric field is an error.
func LoadCandlesCSV(path string) ([]Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var candles []Candle
	sawFirst := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 5 {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		ts, err := parseTime(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("candle csv: bad time %q: %w", row[0], err)
		}

		vals := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("candle csv: bad field %q: %w", row[i+1], err)
			}
			vals[i] = v
		}

		c := Candle{Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Time: ts}
		if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
			vol, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
			if err != nil {
				return nil, fmt.Errorf("candle csv: bad volume %q: %w", row[5], err)
			}
			c.Volume = vol
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// SaveCandlesCSV writes candles in the same layout LoadCandlesCSV reads,
// header included.
func SaveCandlesCSV(path string, candles []Candle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		f.Close()
		return err
	}
	for _, c := range candles {
		row := []string{
			c.Time.Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
