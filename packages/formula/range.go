package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IsCellName checks if a string is a cell name: one or more uppercase
// letters followed by one or more digits (e.g. A1, AB12)
func IsCellName(s string) bool {
	letterEnd := 0
	for letterEnd < len(s) && s[letterEnd] >= 'A' && s[letterEnd] <= 'Z' {
		letterEnd++
	}

	// must have at least one letter and one digit
	if letterEnd == 0 || letterEnd == len(s) {
		return false
	}

	for i := letterEnd; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// maxColumnLetters keeps columnIndex within an int
const maxColumnLetters = 12

// splitCellName splits a cell name into its column letters and row number
func splitCellName(name string) (column string, row int, err error) {
	if !IsCellName(name) {
		return "", 0, fmt.Errorf("invalid cell name: %s", name)
	}

	letterEnd := strings.IndexFunc(name, func(ch rune) bool { return ch >= '0' && ch <= '9' })
	column = name[:letterEnd]
	if len(column) > maxColumnLetters {
		return "", 0, fmt.Errorf("column of %s is out of range", name)
	}

	row, err = strconv.Atoi(name[letterEnd:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid row number in %s", name)
	}
	return column, row, nil
}

// columnIndex converts column letters to a 0-based index
// (A=0, B=1, ..., Z=25, AA=26, AB=27, ...)
func columnIndex(column string) int {
	col := 0
	for _, ch := range column {
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1
}

// columnName converts a 0-based column index back to letters
func columnName(index int) string {
	var letters []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append(letters, byte('A'+(n-1)%26))
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return string(letters)
}

// cellRangeNames lists the cells of the rectangle spanned by two corner
// cells in row-major order: rows outer, columns inner. the corners may be
// given in any order. limit caps the number of cells.
func cellRangeNames(start, end string, limit int) ([]string, error) {
	startCol, startRow, err := splitCellName(start)
	if err != nil {
		return nil, err
	}
	endCol, endRow, err := splitCellName(end)
	if err != nil {
		return nil, err
	}

	// normalize the range so start is always less than or equal to end
	firstCol := min(columnIndex(startCol), columnIndex(endCol))
	lastCol := max(columnIndex(startCol), columnIndex(endCol))
	firstRow := min(startRow, endRow)
	lastRow := max(startRow, endRow)

	rows := lastRow - firstRow + 1
	columns := lastCol - firstCol + 1
	if rows <= 0 || columns <= 0 || columns > math.MaxInt/rows {
		return nil, fmt.Errorf("range %s:%s is too large", start, end)
	}
	if limit > 0 && (rows > limit || columns > limit || rows*columns > limit) {
		return nil, fmt.Errorf("range %s:%s has %d cells, more than the limit of %d", start, end, rows*columns, limit)
	}

	names := make([]string, 0, rows*columns)
	for row := firstRow; row <= lastRow; row++ {
		for col := firstCol; col <= lastCol; col++ {
			names = append(names, columnName(col)+strconv.Itoa(row))
		}
	}
	return names, nil
}

// numberRange lists start, start±1, ... up to and including end, stepping
// toward end. limit caps the number of values.
func numberRange(start, end float64, limit int) ([]float64, error) {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return nil, fmt.Errorf("range %s:%s must have finite endpoints", FormatNumber(start), FormatNumber(end))
	}

	step := 1.0
	if start > end {
		step = -1.0
	}

	// count = floor(span)+1, which exceeds limit exactly when span >= limit
	span := math.Abs(end - start)
	if limit > 0 && span >= float64(limit) {
		return nil, fmt.Errorf("range %s:%s has more than %d values",
			FormatNumber(start), FormatNumber(end), limit)
	}
	count := int(math.Floor(span)) + 1

	values := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		values = append(values, start+float64(i)*step)
	}
	return values, nil
}
