package service

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// header aliases accepted for each import column, lower-cased
var importColumns = map[string][]string{
	"date":          {"date"},
	"procedureType": {"proceduretype", "proceduretypename", "procedure type", "procedure"},
	"doctor":        {"doctor", "doctorname", "doctor name"},
	"patient":       {"patient", "patientname", "patient name"},
}

var importColumnOrder = []string{"date", "procedureType", "doctor", "patient"}

// ParseImportFile reads import rows from a .csv or .xlsx upload. The first
// row is a header naming the columns; blank lines are skipped.
func ParseImportFile(filename string, r io.Reader) ([]ImportRow, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, invalidf("unsupported file type %q, use .csv or .xlsx", filepath.Ext(filename))
	}
	if err != nil {
		return nil, invalidf("could not read %s: %v", filename, err)
	}
	return recordsToRows(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comma = sniffDelimiter(data)
	return reader.ReadAll()
}

// sniffDelimiter picks ';' when the header line uses it and has no commas.
func sniffDelimiter(data []byte) rune {
	line, _ := bufio.NewReader(bytes.NewReader(data)).ReadString('\n')
	if strings.Contains(line, ";") && !strings.Contains(line, ",") {
		return ';'
	}
	return ','
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func recordsToRows(records [][]string) ([]ImportRow, error) {
	if len(records) == 0 {
		return nil, invalidf("file is empty")
	}

	index := map[string]int{}
	for i, cell := range records[0] {
		name := strings.ToLower(strings.TrimSpace(cell))
		for column, aliases := range importColumns {
			for _, alias := range aliases {
				if name == alias {
					if _, seen := index[column]; !seen {
						index[column] = i
					}
				}
			}
		}
	}
	for _, column := range importColumnOrder {
		if _, ok := index[column]; !ok {
			return nil, invalidf("missing column %q in header", column)
		}
	}

	rows := make([]ImportRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, ImportRow{
			Date:              cellAt(record, index["date"]),
			ProcedureTypeName: cellAt(record, index["procedureType"]),
			DoctorName:        cellAt(record, index["doctor"]),
			PatientName:       cellAt(record, index["patient"]),
		})
	}
	return rows, nil
}

func cellAt(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
