// Package export renders a filtered report view as a PDF table or an XLSX
// workbook. Tables are built from the records passed in at call time and
// rendered in that order.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cctv-surveillance-reports/be/models"
)

// Column is a header label and its width in points.
type Column struct {
	Header string
	Width  float64
}

// Table is a rendered-ready snapshot. Cells are strings or ints.
type Table struct {
	Title    string
	Sheet    string
	BaseName string
	Columns  []Column
	Rows     [][]interface{}
}

var activityColumns = []Column{
	{"Sr. No.", 60},
	{"DATE / TIME", 120},
	{"LOCATION", 180},
	{"ACTIVITY INTENSITY", 100},
	{"FINDINGS / CONCERNS", 300},
	{"IMAGES", 120},
}

var statusColumns = []Column{
	{"Sr. No.", 50},
	{"DATE", 70},
	{"LOCATION", 120},
	{"OPENING TIME", 70},
	{"CLOSING TIME", 70},
	{"STATUS", 60},
	{"TOTAL CAMERAS", 60},
	{"WORKING CAMERAS", 70},
	{"NON WORKING CAMERAS", 90},
	{"TOTAL DAY'S RECORDED", 90},
	{"REMARKS", 120},
}

// ActivityTable builds the CCTV monitoring table for records in their given order.
func ActivityTable(records []models.ActivityReport) Table {
	t := Table{
		Title:    "CCTV Monitoring Report",
		Sheet:    "Report",
		BaseName: "CCTV_Monitoring_Report",
		Columns:  activityColumns,
		Rows:     make([][]interface{}, 0, len(records)),
	}
	for i, r := range records {
		intensity := r.Intensity
		if intensity == "" {
			intensity = "-"
		}
		t.Rows = append(t.Rows, []interface{}{
			i + 1,
			FormatDateTime(r.Datetime),
			r.Location,
			intensity,
			r.Findings,
			ImageLabels(len(r.Images)),
		})
	}
	return t
}

// StatusTable builds the daily surveillance status table.
func StatusTable(records []models.StatusReport) Table {
	t := Table{
		Title:    "Daily Surveillance Status Report",
		Sheet:    "StatusReport",
		BaseName: "Daily_Surveillance_Status_Report",
		Columns:  statusColumns,
		Rows:     make([][]interface{}, 0, len(records)),
	}
	for i, s := range records {
		t.Rows = append(t.Rows, []interface{}{
			i + 1,
			dateOnly(s.Date),
			s.Location,
			FormatTime(s.OpeningTime),
			FormatTime(s.ClosingTime),
			s.Status,
			count(s.TotalCameras),
			count(s.WorkingCameras),
			count(s.NonWorkingCameras),
			count(s.TotalDaysRecorded),
			s.Remarks,
		})
	}
	return t
}

// Filename is the fixed download name for the table in format f.
func (t Table) Filename(f Format) string {
	return t.BaseName + "." + string(f)
}

var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// FormatDateTime renders a stored datetime as "1/2/2006 03:04 PM".
// Unparseable values are returned unchanged.
func FormatDateTime(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("1/2/2006 03:04 PM")
		}
	}
	return value
}

// FormatTime renders "HH:MM" as "h:MM AM".
func FormatTime(value string) string {
	hour, minute, ok := strings.Cut(value, ":")
	if !ok {
		return value
	}
	h, err := strconv.Atoi(hour)
	if err != nil {
		return value
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, minute, suffix)
}

// ImageLabels names n images "Image1, Image2, ..." in place of their data.
func ImageLabels(n int) string {
	if n == 0 {
		return "No Images"
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = "Image" + strconv.Itoa(i+1)
	}
	return strings.Join(labels, ", ")
}

func dateOnly(value string) string {
	if len(value) >= 10 {
		if _, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return value[:10]
		}
	}
	return value
}

func count(p *int) interface{} {
	if p == nil {
		return ""
	}
	return *p
}
