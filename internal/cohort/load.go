package cohort

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyCohort is returned when the CSV contains a header but no data rows.
var ErrEmptyCohort = errors.New("cohort file contains no student rows")

// Load reads the cohort CSV at path and returns one Student per row.
//
// Columns are located by header name, so column order does not matter and
// extra columns are ignored. Parsing is strict: the first missing column,
// malformed value, out-of-domain field or duplicate student id aborts the
// load with an error naming the offending row.
func Load(path string, logger *slog.Logger) ([]Student, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cohort file: %w", err)
	}
	defer file.Close()

	students, err := parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	logger.Info("loaded cohort",
		"path", path,
		"students", len(students),
	)
	return students, nil
}

func parse(r io.Reader) ([]Student, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	// Find column indices
	idx := make(map[string]int, len(Columns))
	for i, col := range header {
		idx[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var students []Student
	seen := make(map[int64]int)

	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		s, err := parseRow(record, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if first, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate student id %d (first seen at row %d)", row, s.ID, first)
		}
		seen[s.ID] = row

		students = append(students, s)
	}

	if len(students) == 0 {
		return nil, ErrEmptyCohort
	}
	return students, nil
}

func parseRow(record []string, idx map[string]int) (Student, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(record) {
			return "", fmt.Errorf("missing value for column %s", col)
		}
		return strings.TrimSpace(record[i]), nil
	}

	parseInt := func(col string) (int, error) {
		raw, err := field(col)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("column %s: invalid value %q", col, raw)
		}
		return v, nil
	}

	rawID, err := field(ColumnStudentID)
	if err != nil {
		return Student{}, err
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Student{}, fmt.Errorf("column %s: invalid value %q", ColumnStudentID, rawID)
	}

	var s Student
	s.ID = id
	if s.WonLottery, err = parseInt(ColumnWonLottery); err != nil {
		return Student{}, err
	}
	if s.Sex, err = parseInt(ColumnSex); err != nil {
		return Student{}, err
	}
	if s.Age, err = parseInt(ColumnAge); err != nil {
		return Student{}, err
	}
	if s.FinishedGrade, err = parseInt(ColumnFinishedGrade); err != nil {
		return Student{}, err
	}
	if s.UsedAid, err = parseInt(ColumnUsedAid); err != nil {
		return Student{}, err
	}
	return s, nil
}
