package web

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const julyCSV = `begin,end,customer,project,activity,description,duration
2026-07-01T09:00:00,2026-07-01T12:30:00,ACME,Internal,Development,Feature work,12600
2026-07-02T10:00:00,2026-07-02T12:15:00,ACME,Internal,Review,PR review,8100
`

const augustCSV = `begin,end,customer,project,activity,description,duration
2026-08-03T09:00:00,2026-08-03T10:00:00,ACME,Website,Development,Bugfix,3600
`

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "monthly-report-2026-07.csv", julyCSV)
	writeFixture(t, dir, "monthly-report-2026-08.csv", augustCSV)
	writeFixture(t, dir, "broken.csv", "\"unterminated\n")
	writeFixture(t, dir, "notes.txt", "not a csv file\n")
	return dir
}

func TestLoadDataset(t *testing.T) {
	t.Parallel()

	dataset, err := LoadDataset(fixtureDir(t))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}

	if got, want := len(dataset.Rows), 3; got != want {
		t.Errorf("rows = %d, want %d", got, want)
	}
	wantFiles := []string{"monthly-report-2026-07.csv", "monthly-report-2026-08.csv"}
	if !reflect.DeepEqual(dataset.Files, wantFiles) {
		t.Errorf("files = %v, want %v", dataset.Files, wantFiles)
	}
	if len(dataset.Skipped) != 1 || dataset.Skipped[0].File != "broken.csv" {
		t.Errorf("skipped = %v, want broken.csv only", dataset.Skipped)
	}
}

func TestLoadDatasetMissingDir(t *testing.T) {
	t.Parallel()

	if _, err := LoadDataset(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestBuildOverview(t *testing.T) {
	t.Parallel()

	dataset, err := LoadDataset(fixtureDir(t))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}

	overview := BuildOverview(dataset)
	if overview.EntryCount != 3 {
		t.Errorf("entry count = %d, want 3", overview.EntryCount)
	}
	if overview.TotalHours != 6.75 {
		t.Errorf("total hours = %v, want 6.75", overview.TotalHours)
	}
	if len(overview.Months) != 2 {
		t.Fatalf("months = %v, want two buckets", overview.Months)
	}
	if m := overview.Months[0]; m.Month != "2026-07" || m.Hours != 5.75 || m.Entries != 2 {
		t.Errorf("first month = %+v, want 2026-07 / 5.75 / 2", m)
	}
	if m := overview.Months[1]; m.Month != "2026-08" || m.Hours != 1 || m.Entries != 1 {
		t.Errorf("second month = %+v, want 2026-08 / 1 / 1", m)
	}
}

func TestBuildMonthDetail(t *testing.T) {
	t.Parallel()

	dataset, err := LoadDataset(fixtureDir(t))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}

	detail := BuildMonthDetail(dataset, "2026-07")
	if detail.TotalHours != 5.75 {
		t.Errorf("total hours = %v, want 5.75", detail.TotalHours)
	}
	if detail.EntryCount != 2 {
		t.Errorf("entry count = %d, want 2", detail.EntryCount)
	}

	wantDays := []DayRow{
		{Date: "2026-07-01", Hours: 3.5, Entries: 1},
		{Date: "2026-07-02", Hours: 2.25, Entries: 1},
	}
	if !reflect.DeepEqual(detail.Days, wantDays) {
		t.Errorf("days = %+v, want %+v", detail.Days, wantDays)
	}

	wantActivities := []ActivityRow{
		{Activity: "Development", Hours: 3.5, Share: 60.9},
		{Activity: "Review", Hours: 2.25, Share: 39.1},
	}
	if !reflect.DeepEqual(detail.Activities, wantActivities) {
		t.Errorf("activities = %+v, want %+v", detail.Activities, wantActivities)
	}

	wantProjects := []ProjectRow{{Project: "Internal", Hours: 5.75}}
	if !reflect.DeepEqual(detail.Projects, wantProjects) {
		t.Errorf("projects = %+v, want %+v", detail.Projects, wantProjects)
	}
}

func TestBuildMonthDetailEmptyMonth(t *testing.T) {
	t.Parallel()

	detail := BuildMonthDetail(&Dataset{}, "2026-01")
	if detail.TotalHours != 0 || detail.EntryCount != 0 {
		t.Errorf("empty month totals = %v / %d, want zeroes", detail.TotalHours, detail.EntryCount)
	}
	if len(detail.Days) != 0 || len(detail.Activities) != 0 || len(detail.Projects) != 0 {
		t.Errorf("empty month produced rows: %+v", detail)
	}
}

func TestBuildMonthDetailLabelsEmptyAsNone(t *testing.T) {
	t.Parallel()

	begin := time.Date(2026, time.July, 6, 9, 0, 0, 0, time.Local)
	dataset := &Dataset{Rows: []EntryRow{{Begin: begin, HasBegin: true, Hours: 1.5}}}

	detail := BuildMonthDetail(dataset, "2026-07")
	if len(detail.Activities) != 1 || detail.Activities[0].Activity != "(none)" {
		t.Errorf("activities = %+v, want single (none) bucket", detail.Activities)
	}
	if detail.Activities[0].Share != 100 {
		t.Errorf("share = %v, want 100", detail.Activities[0].Share)
	}
	if len(detail.Projects) != 1 || detail.Projects[0].Project != "(none)" {
		t.Errorf("projects = %+v, want single (none) bucket", detail.Projects)
	}
}

func TestRowHoursFallsBackToSpan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "spans.csv", `begin,end,customer,project,activity,description,duration
2026-07-03T09:00:00,2026-07-03T11:00:00,ACME,Internal,Development,No duration,
2026-07-03T12:00:00,2026-07-03T12:30:00,ACME,Internal,Review,Bad duration,abc
,,ACME,Internal,Standup,No timestamps,
`)

	dataset, err := LoadDataset(dir)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(dataset.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(dataset.Rows))
	}
	if dataset.Rows[0].Hours != 2 {
		t.Errorf("row 0 hours = %v, want 2 from end-begin span", dataset.Rows[0].Hours)
	}
	if dataset.Rows[1].Hours != 0.5 {
		t.Errorf("row 1 hours = %v, want 0.5 from end-begin span", dataset.Rows[1].Hours)
	}
	if dataset.Rows[2].Hours != 0 {
		t.Errorf("row 2 hours = %v, want 0", dataset.Rows[2].Hours)
	}
	if dataset.Rows[2].HasBegin {
		t.Error("row 2 should have no begin timestamp")
	}
	if got := dataset.Rows[2].MonthKey(); got != "" {
		t.Errorf("row 2 month key = %q, want empty", got)
	}
}

func TestRecordGetNormalizesHeaderLookups(t *testing.T) {
	t.Parallel()

	record := Record{Values: map[string]string{"projectid": "7", "totalhours": " 5.75 "}}
	if got := record.Get("Project_ID", "project id"); got != "7" {
		t.Errorf("Get(Project_ID) = %q, want 7", got)
	}
	if got := record.Get("Total Hours"); got != "5.75" {
		t.Errorf("Get(Total Hours) = %q, want trimmed 5.75", got)
	}
	if got := record.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}
