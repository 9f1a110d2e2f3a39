package output

// Writer renders a report to one output file.
type Writer interface {
	Write(path string, report *Report) error
}
