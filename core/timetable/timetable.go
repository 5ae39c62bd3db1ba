// Package timetable parses uploaded timetables (csv, xls, xlsx) and maps their subjects to students.
package timetable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

const maxXLSRows = 100000

// Columns is the documented column order of a timetable.
var Columns = []string{"day", "time", "subject", "faculty", "semester", "branch", "section"}

type (
	Entry struct {
		Day      string `json:"day"`
		Time     string `json:"time"`
		Subject  string `json:"subject"`
		Faculty  string `json:"faculty"`
		Semester string `json:"semester"`
		Branch   string `json:"branch"`
		Section  string `json:"section"`
	}

	StudentMapping struct {
		StudentID      string   `json:"studentId"`
		Usn            string   `json:"usn"`
		Name           string   `json:"name"`
		Semester       string   `json:"semester"`
		Branch         string   `json:"branch"`
		Section        string   `json:"section"`
		MappedSubjects []string `json:"mappedSubjects"`
	}
)

// CheckTimetable rejects files which are not csv, xls or xlsx (by declared type) before anything gets parsed.
func CheckTimetable(f upload.File, maxSize int64) error {
	return upload.Timetable(maxSize).Check(f)
}

// Parse checks f then reads its timetable entries.
func Parse(f upload.File, maxSize int64) ([]Entry, error) {
	if err := CheckTimetable(f, maxSize); err != nil {
		return nil, err
	}
	rows, err := readRows(f)
	if err != nil {
		return nil, core.NewFieldError("file", "could not read timetable: "+errors.Cause(err).Error())
	}
	return entries(rows)
}

// readRows picks the reader from the sniffed content; the declared type is only a fallback.
func readRows(f upload.File) ([][]string, error) {
	data, err := io.ReadAll(f.Content)
	if err != nil {
		return nil, errors.Wrap(err, "reading upload")
	}

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is(upload.MimeXLSX), mtype.Is("application/zip"):
		return readXLSX(data)
	case mtype.Is(upload.MimeXLS), mtype.Is("application/x-ole-storage"):
		return readXLS(data)
	case strings.HasPrefix(mtype.String(), "text/"):
		return readCSV(data)
	}

	switch f.MediaType() {
	case upload.MimeCSV:
		return readCSV(data)
	case upload.MimeXLS:
		return readXLS(data)
	default:
		return readXLSX(data)
	}
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// readXLS reads the first worksheet only, like readXLSX.
func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}

	last := int(sheet.MaxRow)
	if last >= maxXLSRows {
		last = maxXLSRows - 1
	}
	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for c := 0; c < row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// xlsRow returns nil for rows the sheet never defined: WorkSheet.Row panics on those.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}
	return file.GetRows(sheetName)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// columnIndexes detects the header row; without one the documented column order is used.
func columnIndexes(row []string) (map[string]int, bool) {
	idx := make(map[string]int, len(Columns))
	for i, cell := range row {
		if name := normalizeHeader(cell); lo.Contains(Columns, name) {
			if _, dup := idx[name]; !dup {
				idx[name] = i
			}
		}
	}
	if len(idx) == len(Columns) {
		return idx, true
	}

	for i, name := range Columns {
		idx[name] = i
	}
	return idx, false
}

func entries(rows [][]string) ([]Entry, error) {
	result := make([]Entry, 0, len(rows))
	var idx map[string]int
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if idx == nil {
			var hasHeader bool
			if idx, hasHeader = columnIndexes(row); hasHeader {
				continue
			}
		}

		e := Entry{
			Day:      cellValue(row, idx["day"]),
			Time:     cellValue(row, idx["time"]),
			Subject:  cellValue(row, idx["subject"]),
			Faculty:  cellValue(row, idx["faculty"]),
			Semester: cellValue(row, idx["semester"]),
			Branch:   cellValue(row, idx["branch"]),
			Section:  cellValue(row, idx["section"]),
		}
		if missing := e.missing(); len(missing) > 0 {
			msg := fmt.Sprintf("row %d: missing %s", i+1, strings.Join(missing, ", "))
			return nil, core.NewFieldError("file", msg)
		}
		result = append(result, e)
	}
	return result, nil
}

func (e Entry) missing() []string {
	values := []string{e.Day, e.Time, e.Subject, e.Faculty, e.Semester, e.Branch, e.Section}
	missing := make([]string, 0)
	for i, v := range values {
		if v == "" {
			missing = append(missing, Columns[i])
		}
	}
	return missing
}

func (e Entry) matches(std student.Student) bool {
	return e.Semester == strings.TrimSpace(std.Semester) &&
		e.Branch == strings.TrimSpace(std.Branch) &&
		e.Section == strings.TrimSpace(std.Section)
}

// Map computes, for every student, the distinct subjects (first-seen order) of the entries whose
// (semester, branch, section) exactly match the student's. Students without a match get an empty list.
func Map(students []student.Student, entries []Entry) []StudentMapping {
	mappings := make([]StudentMapping, 0, len(students))
	for _, std := range students {
		matched := lo.Filter(entries, func(e Entry, _ int) bool { return e.matches(std) })
		subjects := lo.Uniq(lo.Map(matched, func(e Entry, _ int) string { return e.Subject }))
		mappings = append(mappings, StudentMapping{
			StudentID:      std.ID,
			Usn:            std.Usn,
			Name:           std.Name,
			Semester:       std.Semester,
			Branch:         std.Branch,
			Section:        std.Section,
			MappedSubjects: subjects,
		})
	}
	return mappings
}
