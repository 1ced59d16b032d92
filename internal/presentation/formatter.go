package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Formats accepted by NewFormatter.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#5C5C5C"})
)

// Formatter writes command results as JSON or as tables.
type Formatter struct {
	writer io.Writer
	format string
}

// NewFormatter creates a formatter. Any format other than FormatJSON
// renders tables.
func NewFormatter(writer io.Writer, format string) *Formatter {
	if format != FormatJSON {
		format = FormatTable
	}
	return &Formatter{writer: writer, format: format}
}

// JSON reports whether the formatter emits JSON.
func (f *Formatter) JSON() bool {
	return f.format == FormatJSON
}

// Encode writes v as indented JSON.
func (f *Formatter) Encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Message prints a one-line result, or {"message": ...} in JSON mode.
func (f *Formatter) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if f.JSON() {
		return f.Encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(f.writer, msg)
	return err
}

// Individuals prints registry entries.
func (f *Formatter) Individuals(dtos []IndividualDTO) error {
	if f.JSON() {
		return f.Encode(dtos)
	}
	rows := make([][]string, len(dtos))
	for i, d := range dtos {
		rows[i] = []string{d.ID, d.Name, d.Department, d.AddedDate}
	}
	return f.table("", []string{"Student ID", "Name", "Department", "Added Date"}, rows)
}

// Records prints ledger records.
func (f *Formatter) Records(dtos []RecordDTO) error {
	if f.JSON() {
		return f.Encode(dtos)
	}
	return f.recordTable("", dtos)
}

// Today prints today's snapshot.
func (f *Formatter) Today(dto TodayDTO) error {
	if f.JSON() {
		return f.Encode(dto)
	}
	summary := fmt.Sprintf("Total: %d  Unique: %d  Most common method: %s", dto.Total, dto.Unique, dto.MostCommonMethod)
	if err := f.line(titleStyle.Render("Attendance for " + dto.Date)); err != nil {
		return err
	}
	if err := f.line(summary); err != nil {
		return err
	}
	return f.recordTable("", dto.Records)
}

// Detail prints one individual's history.
func (f *Formatter) Detail(dto DetailDTO) error {
	if f.JSON() {
		return f.Encode(dto)
	}
	ind := dto.Individual
	if err := f.line(titleStyle.Render(fmt.Sprintf("%s (%s)", ind.Name, ind.ID))); err != nil {
		return err
	}
	info := fmt.Sprintf("Department: %s  Added: %s  Records: %d  Rate: %.1f%%",
		ind.Department, ind.AddedDate, dto.Total, dto.AttendanceRate)
	if err := f.line(info); err != nil {
		return err
	}
	return f.recordTable("", dto.Records)
}

// Range prints a range report.
func (f *Formatter) Range(dto RangeDTO) error {
	if f.JSON() {
		return f.Encode(dto)
	}
	title := fmt.Sprintf("%s to %s: %d records, %d individuals", dto.Start, dto.End, dto.Stats.TotalRecords, dto.Stats.DistinctIndividuals)
	return f.recordTable(title, dto.Records)
}

// Overview prints the dataset summary.
func (f *Formatter) Overview(dto OverviewDTO) error {
	if f.JSON() {
		return f.Encode(dto)
	}
	summary := [][]string{
		{"Total records", strconv.Itoa(dto.Stats.TotalRecords)},
		{"Registered", strconv.Itoa(dto.Registered)},
		{"Individuals seen", strconv.Itoa(dto.Stats.DistinctIndividuals)},
		{"Days recorded", strconv.Itoa(dto.Stats.DistinctDates)},
		{"Average per day", fmt.Sprintf("%.1f", dto.Stats.AveragePerDay)},
		{"Attendance rate", fmt.Sprintf("%.1f%%", dto.AttendanceRate)},
		{"Most common method", dto.MostCommonMethod},
		{"Most common department", dto.MostCommonCategory},
	}
	if err := f.table("Overview", []string{"Metric", "Value"}, summary); err != nil {
		return err
	}
	if err := f.countTable("By method", "Method", dto.ByMethod); err != nil {
		return err
	}
	if err := f.countTable("By department", "Department", dto.ByCategory); err != nil {
		return err
	}
	if err := f.countTable("By date", "Date", dto.ByDate); err != nil {
		return err
	}
	return f.recordTable("Recent activity", dto.Recent)
}

func (f *Formatter) countTable(title, keyHeader string, counts []CountDTO) error {
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Key, strconv.Itoa(c.Count)}
	}
	return f.table(title, []string{keyHeader, "Count"}, rows)
}

func (f *Formatter) recordTable(title string, dtos []RecordDTO) error {
	rows := make([][]string, len(dtos))
	for i, d := range dtos {
		rows[i] = []string{d.StudentID, d.Name, d.Date, d.Time, d.Method, d.Status}
	}
	return f.table(title, []string{"Student ID", "Name", "Date", "Time", "Method", "Status"}, rows)
}

func (f *Formatter) table(title string, headers []string, rows [][]string) error {
	if title != "" {
		if err := f.line(titleStyle.Render(title)); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return f.line("(none)")
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return f.line(t.Render())
}

func (f *Formatter) line(s string) error {
	_, err := fmt.Fprintln(f.writer, s)
	return err
}
