package web

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/devpbeat/kimai-tools/internal/timeutil"
)

// Record is one row of an exported CSV file, keyed by normalized header.
type Record struct {
	File      string
	RowNumber int
	Values    map[string]string
}

func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		normalized := normalizeHeader(key)
		if value, ok := r.Values[normalized]; ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func normalizeHeader(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}

// EntryRow is one timesheet row reduced to the fields the dashboard
// aggregates over.
type EntryRow struct {
	Begin       time.Time
	HasBegin    bool
	Hours       float64
	Customer    string
	Project     string
	Activity    string
	Description string
	SourceFile  string
}

// MonthKey renders the row's month as YYYY-MM; empty when the row carries
// no parseable begin timestamp.
func (e EntryRow) MonthKey() string {
	if !e.HasBegin {
		return ""
	}
	return e.Begin.Format("2006-01")
}

type SkippedFile struct {
	File   string
	Reason string
}

// Dataset is the combined content of one export directory.
type Dataset struct {
	Rows    []EntryRow
	Files   []string
	Skipped []SkippedFile
}

// LoadDataset reads every .csv file in dir. Files that cannot be parsed
// are skipped and reported, never fatal for the rest of the directory.
func LoadDataset(dir string) (*Dataset, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read export dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(dirEntry.Name()), ".csv") {
			continue
		}
		names = append(names, dirEntry.Name())
	}
	sort.Strings(names)

	dataset := &Dataset{
		Rows:    make([]EntryRow, 0, 256),
		Files:   make([]string, 0, len(names)),
		Skipped: make([]SkippedFile, 0),
	}
	for _, name := range names {
		records, err := readCSVRecords(filepath.Join(dir, name))
		if err != nil {
			dataset.Skipped = append(dataset.Skipped, SkippedFile{File: name, Reason: err.Error()})
			continue
		}
		dataset.Files = append(dataset.Files, name)
		for _, record := range records {
			dataset.Rows = append(dataset.Rows, entryRowFromRecord(record))
		}
	}

	return dataset, nil
}

func readCSVRecords(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	normalizedHeaders := make([]string, len(headers))
	for i, header := range headers {
		normalizedHeaders[i] = normalizeHeader(header)
	}

	records := make([]Record, 0, 128)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber+1, err)
		}

		values := make(map[string]string, len(normalizedHeaders))
		for i := range normalizedHeaders {
			if i < len(row) {
				values[normalizedHeaders[i]] = row[i]
			} else {
				values[normalizedHeaders[i]] = ""
			}
		}

		records = append(records, Record{
			File:      filepath.Base(path),
			RowNumber: rowNumber + 1,
			Values:    values,
		})
		rowNumber++
	}

	return records, nil
}

func entryRowFromRecord(record Record) EntryRow {
	row := EntryRow{
		Customer:    record.Get("customer"),
		Project:     record.Get("project"),
		Activity:    record.Get("activity"),
		Description: record.Get("description"),
		SourceFile:  record.File,
	}
	if begin, err := parseRowTime(record.Get("begin")); err == nil {
		row.Begin = begin
		row.HasBegin = true
	}
	row.Hours = rowHours(record)
	return row
}

// rowHours prefers the duration column (seconds). Rows without a usable
// duration fall back to the end-begin span, then to zero.
func rowHours(record Record) float64 {
	if raw := record.Get("duration"); raw != "" {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds >= 0 {
			return seconds / 3600.0
		}
	}

	begin, beginErr := parseRowTime(record.Get("begin"))
	end, endErr := parseRowTime(record.Get("end"))
	if beginErr == nil && endErr == nil && end.After(begin) {
		return end.Sub(begin).Hours()
	}
	return 0
}

var rowTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
}

func parseRowTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range rowTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", value)
}

type MonthRow struct {
	Month   string  `json:"month"`
	Hours   float64 `json:"hours"`
	Entries int     `json:"entries"`
}

type Overview struct {
	Months     []MonthRow
	TotalHours float64
	EntryCount int
	Files      []string
	Skipped    []SkippedFile
}

// BuildOverview totals the dataset per month. Rows without a begin
// timestamp still count toward the grand total but cannot be bucketed.
func BuildOverview(dataset *Dataset) Overview {
	byMonth := make(map[string]*MonthRow)
	total := 0.0
	for _, row := range dataset.Rows {
		total += row.Hours
		key := row.MonthKey()
		if key == "" {
			continue
		}
		bucket, ok := byMonth[key]
		if !ok {
			bucket = &MonthRow{Month: key}
			byMonth[key] = bucket
		}
		bucket.Hours += row.Hours
		bucket.Entries++
	}

	months := make([]MonthRow, 0, len(byMonth))
	for _, bucket := range byMonth {
		bucket.Hours = roundHours(bucket.Hours)
		months = append(months, *bucket)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})

	return Overview{
		Months:     months,
		TotalHours: roundHours(total),
		EntryCount: len(dataset.Rows),
		Files:      dataset.Files,
		Skipped:    dataset.Skipped,
	}
}

type DayRow struct {
	Date    string
	Hours   float64
	Entries int
}

type ActivityRow struct {
	Activity string
	Hours    float64
	Share    float64
}

type ProjectRow struct {
	Project string
	Hours   float64
}

type MonthDetail struct {
	Month      string
	TotalHours float64
	EntryCount int
	Days       []DayRow
	Activities []ActivityRow
	Projects   []ProjectRow
}

// BuildMonthDetail breaks one month down by day, activity and project.
// Activity shares are percentages of the month total.
func BuildMonthDetail(dataset *Dataset, month string) MonthDetail {
	detail := MonthDetail{Month: month}
	byDay := make(map[string]*DayRow)
	byActivity := make(map[string]float64)
	byProject := make(map[string]float64)
	total := 0.0

	for _, row := range dataset.Rows {
		if row.MonthKey() != month {
			continue
		}
		total += row.Hours
		detail.EntryCount++

		dayKey := timeutil.DayKey(row.Begin)
		day, ok := byDay[dayKey]
		if !ok {
			day = &DayRow{Date: dayKey}
			byDay[dayKey] = day
		}
		day.Hours += row.Hours
		day.Entries++

		byActivity[labelOrNone(row.Activity)] += row.Hours
		byProject[labelOrNone(row.Project)] += row.Hours
	}

	detail.TotalHours = roundHours(total)

	detail.Days = make([]DayRow, 0, len(byDay))
	for _, day := range byDay {
		day.Hours = roundHours(day.Hours)
		detail.Days = append(detail.Days, *day)
	}
	sort.Slice(detail.Days, func(i, j int) bool {
		return detail.Days[i].Date < detail.Days[j].Date
	})

	detail.Activities = make([]ActivityRow, 0, len(byActivity))
	for activity, hours := range byActivity {
		share := 0.0
		if total > 0 {
			share = math.Round(hours/total*1000) / 10
		}
		detail.Activities = append(detail.Activities, ActivityRow{
			Activity: activity,
			Hours:    roundHours(hours),
			Share:    share,
		})
	}
	sort.Slice(detail.Activities, func(i, j int) bool {
		if detail.Activities[i].Hours == detail.Activities[j].Hours {
			return detail.Activities[i].Activity < detail.Activities[j].Activity
		}
		return detail.Activities[i].Hours > detail.Activities[j].Hours
	})

	detail.Projects = make([]ProjectRow, 0, len(byProject))
	for project, hours := range byProject {
		detail.Projects = append(detail.Projects, ProjectRow{
			Project: project,
			Hours:   roundHours(hours),
		})
	}
	sort.Slice(detail.Projects, func(i, j int) bool {
		if detail.Projects[i].Hours == detail.Projects[j].Hours {
			return detail.Projects[i].Project < detail.Projects[j].Project
		}
		return detail.Projects[i].Hours > detail.Projects[j].Hours
	})

	return detail
}

func labelOrNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}
