// Package web serves a local dashboard over previously exported monthly
// reports. The server is meant to bind to localhost as a single-user UI
// and intentionally has no auth or CSRF protection in this mode.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders aggregate views over the CSV exports found in one
// directory. The dataset is reloaded per request so new exports show up
// without a restart.
type Server struct {
	dataDir string
	mux     *http.ServeMux
}

func NewServer(dataDir string) *Server {
	s := &Server{dataDir: dataDir, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleOverview)
	s.mux.HandleFunc("GET /month", s.handleMonthPicker)
	s.mux.HandleFunc("GET /month/{month}", s.handleMonth)
	s.mux.HandleFunc("GET /api/summary", s.handleAPISummary)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type overviewPage struct {
	Title    string
	Overview Overview
}

type monthPage struct {
	Title  string
	Detail MonthDetail
}

type summaryPayload struct {
	TotalHours float64    `json:"totalHours"`
	EntryCount int        `json:"entryCount"`
	Months     []MonthRow `json:"months"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	dataset, ok := s.loadDataset(w)
	if !ok {
		return
	}
	s.renderTemplate(w, "overview.html", overviewPage{
		Title:    "Monthly reports",
		Overview: BuildOverview(dataset),
	})
}

// handleMonthPicker turns the ?month=YYYY-MM form submit into the
// canonical /month/{month} URL.
func (s *Server) handleMonthPicker(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if _, err := parseMonth(month); err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, "/month/"+month, http.StatusSeeOther)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	month := r.PathValue("month")
	if _, err := parseMonth(month); err != nil {
		http.Error(w, "invalid month format (expected YYYY-MM)", http.StatusBadRequest)
		return
	}
	dataset, ok := s.loadDataset(w)
	if !ok {
		return
	}
	s.renderTemplate(w, "month.html", monthPage{
		Title:  "Report " + month,
		Detail: BuildMonthDetail(dataset, month),
	})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	dataset, err := LoadDataset(s.dataDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	overview := BuildOverview(dataset)
	writeJSON(w, http.StatusOK, summaryPayload{
		TotalHours: overview.TotalHours,
		EntryCount: overview.EntryCount,
		Months:     overview.Months,
	})
}

func (s *Server) loadDataset(w http.ResponseWriter) (*Dataset, bool) {
	dataset, err := LoadDataset(s.dataDir)
	if err != nil {
		http.Error(w, "load exports: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return dataset, true
}

func (s *Server) renderTemplate(w http.ResponseWriter, page string, data any) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fmtHours": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"fmtShare": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	}).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func parseMonth(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01", value, time.Local)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
