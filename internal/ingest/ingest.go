// Package ingest reads sample series from delimited text files.
//
// Rows whose selected columns are missing or not numeric (headers, comments,
// blank lines) are skipped. Truncation counts accepted samples, not raw rows.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/fixvec/errs"
)

// DefaultDelimiter separates columns when Options.Delimiter is zero.
const DefaultDelimiter = ';'

// Options selects columns and limits.
type Options struct {
	// Delimiter separates columns; zero means DefaultDelimiter.
	Delimiter rune
	// XColumn is the 0-based column of the x coordinates.
	XColumn int
	// YColumn is the 0-based column of the sample values.
	YColumn int
	// Truncate stops after this many samples; zero or negative reads everything.
	Truncate int
}

// DefaultOptions reads x from column 0 and y from column 1, separated by ';'.
func DefaultOptions() Options {
	return Options{Delimiter: DefaultDelimiter, XColumn: 0, YColumn: 1}
}

// Series is a parsed file.
type Series struct {
	// X holds the x coordinates, or nil for single-column reads.
	X []float64
	// Y holds the sample values.
	Y []float64
	// Decimals is the largest number of fractional digits written in the Y column.
	Decimals int
}

// ReadXY reads equal-length x and y series from the file at path.
func ReadXY(path string, opts Options) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ParseXY(f, opts)
	if err != nil {
		return Series{}, fmt.Errorf("read %s: %w", path, err)
	}

	return s, nil
}

// ParseXY reads equal-length x and y series from r.
func ParseXY(r io.Reader, opts Options) (Series, error) {
	return parse(r, opts, true)
}

// ReadColumn reads the YColumn of the file at path; XColumn is ignored.
func ReadColumn(path string, opts Options) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ParseColumn(f, opts)
	if err != nil {
		return Series{}, fmt.Errorf("read %s: %w", path, err)
	}

	return s, nil
}

// ParseColumn reads the YColumn of r; XColumn is ignored.
func ParseColumn(r io.Reader, opts Options) (Series, error) {
	return parse(r, opts, false)
}

func parse(r io.Reader, opts Options, withX bool) (Series, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}
	if opts.YColumn < 0 || (withX && opts.XColumn < 0) {
		return Series{}, fmt.Errorf("%w: negative column index", errs.ErrInvalidParameter)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var s Series
	for opts.Truncate <= 0 || len(s.Y) < opts.Truncate {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, err
		}

		y, decimals, ok := field(row, opts.YColumn)
		if !ok {
			continue
		}

		if withX {
			x, _, ok := field(row, opts.XColumn)
			if !ok {
				continue
			}
			s.X = append(s.X, x)
		}

		s.Y = append(s.Y, y)
		s.Decimals = max(s.Decimals, decimals)
	}

	return s, nil
}

// field parses row[col] and counts its fractional digits.
func field(row []string, col int) (float64, int, bool) {
	if col >= len(row) {
		return 0, 0, false
	}

	text := strings.TrimSpace(row[col])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, 0, false
	}

	return v, fractionDigits(text), true
}

// fractionDigits counts the digits after the decimal point of a plain decimal
// literal. Exponent notation is counted up to the exponent marker.
func fractionDigits(text string) int {
	dot := strings.IndexByte(text, '.')
	if dot < 0 {
		return 0
	}

	digits := 0
	for _, c := range text[dot+1:] {
		if c < '0' || c > '9' {
			break
		}
		digits++
	}

	return digits
}
