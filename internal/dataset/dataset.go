// Package dataset reads parametrized point clouds from CSV files.
//
// Every row holds the d parameter values of one point followed by its m
// coordinates. A leading header row is skipped when it is not numeric, and
// lines starting with '#' are comments.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Cloud is a parametrized point cloud: Params[i] is the parameter of
// Points[i].
type Cloud struct {
	Params [][]float64
	Points [][]float64
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	return len(c.Params)
}

// Width returns the number of coordinates per point.
func (c *Cloud) Width() int {
	if len(c.Points) == 0 {
		return 0
	}
	return len(c.Points[0])
}

// Load reads a cloud with dims parameter columns from the CSV file at path.
func Load(path string, dims int) (*Cloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open points file: %w", err)
	}
	defer f.Close()

	cloud, err := Read(f, dims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cloud, nil
}

// Read parses a cloud with dims parameter columns from r. Every row needs
// the same number of columns, at least dims+1.
func Read(r io.Reader, dims int) (*Cloud, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("parameter dimension must be positive, got %d", dims)
	}

	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	cloud := &Cloud{}
	columns := 0
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		values, err := parseRow(record)
		if err != nil {
			if row == 1 {
				continue // Header
			}
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if columns == 0 {
			columns = len(values)
			if columns <= dims {
				return nil, fmt.Errorf("rows have %d columns, need more than %d parameter columns", columns, dims)
			}
		}
		if len(values) != columns {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: has %d columns, want %d", line, len(values), columns)
		}

		cloud.Params = append(cloud.Params, values[:dims:dims])
		cloud.Points = append(cloud.Points, values[dims:])
	}

	if cloud.Len() == 0 {
		return nil, fmt.Errorf("no points found")
	}
	return cloud, nil
}

func parseRow(record []string) ([]float64, error) {
	values := make([]float64, len(record))
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}
