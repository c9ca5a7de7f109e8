package dataprocessing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "mechprop/internal/errors"
	"mechprop/pkg/contracts/domain"
)

const (
	// BannerPrefix marks interleaved instrument banner lines.
	BannerPrefix = "Axial Counts"

	// PreambleLines is the number of header lines after banner removal.
	PreambleLines = 5

	fieldsPerRow = 5
)

type numberedLine struct {
	text   string
	lineNo int
}

// ParseFile reads an instrument log from disk.
func ParseFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open log", err).
			WithContext("path", path)
	}
	defer f.Close()

	return ParseReader(f)
}

// ParseReader reads an instrument log from r.
func ParseReader(r io.Reader) (*Table, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewParsingError("failed to read log", err)
	}
	return ParseLines(lines)
}

// ParseLines converts raw log lines into a table.
//
// Banner lines are removed wherever they occur, then the first five of the
// remaining lines are discarded. The delimiter is decided once from the
// first data line: comma if it contains one, tab otherwise. Of each line's
// non-empty tokens, the second through sixth become the row.
func ParseLines(lines []string) (*Table, error) {
	kept := make([]numberedLine, 0, len(lines))
	for i, line := range lines {
		if strings.HasPrefix(line, BannerPrefix) {
			continue
		}
		kept = append(kept, numberedLine{text: line, lineNo: i + 1})
	}

	if len(kept) <= PreambleLines {
		return nil, apperrors.NewParsingError("log has no data lines", nil)
	}
	data := kept[PreambleLines:]

	delim := ""
	rows := make([]domain.RawRecord, 0, len(data))
	for _, line := range data {
		if strings.TrimSpace(line.text) == "" {
			continue
		}
		if delim == "" {
			delim = "\t"
			if strings.Contains(line.text, ",") {
				delim = ","
			}
		}

		row, err := parseRow(line.text, delim)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("line %d", line.lineNo), err).
				WithContext("line", line.lineNo)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("log has no data lines", nil)
	}
	return NewTable(rows), nil
}

func parseRow(line, delim string) (domain.RawRecord, error) {
	tokens := make([]string, 0, fieldsPerRow+1)
	for _, tok := range strings.Split(line, delim) {
		if tok = strings.TrimSpace(tok); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) < fieldsPerRow+1 {
		return domain.RawRecord{}, fmt.Errorf("expected %d fields after the index, got %d", fieldsPerRow, max(len(tokens)-1, 0))
	}

	var vals [fieldsPerRow]float64
	for i, tok := range tokens[1 : fieldsPerRow+1] {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return domain.RawRecord{}, fmt.Errorf("field %q: %w", domain.Columns[i], err)
		}
		vals[i] = v
	}

	return domain.RawRecord{
		ElapsedTime: vals[0],
		ScanTime:    vals[1],
		Display1:    vals[2],
		Load1:       vals[3],
		Load2:       vals[4],
	}, nil
}
