package service

import (
	"fmt"
	"strings"

	"github.com/UnknownOlympus/kmlforge/internal/models"
)

// Report describes the outcome of one batch operation.
type Report struct {
	Operation string             // Operation is one of the Operation* constants.
	Inputs    int                // Inputs is the number of source files considered.
	Outputs   []string           // Outputs lists the files written, in order.
	Records   int                // Records is the number of placemarks or rows written.
	Failures  []models.FileError // Failures lists the sources that could not be processed.
}

// Summary renders the report as human-readable text naming every output and failure.
func (r Report) Summary() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "%s: %d input file(s), %d output file(s), %d record(s), %d failure(s)\n",
		r.Operation, r.Inputs, len(r.Outputs), r.Records, len(r.Failures))
	for _, output := range r.Outputs {
		fmt.Fprintf(&buf, "  wrote  %s\n", output)
	}
	for _, failure := range r.Failures {
		fmt.Fprintf(&buf, "  failed %s: %v\n", failure.Path, failure.Err)
	}
	if len(r.Outputs) == 0 {
		buf.WriteString("  no output files were produced\n")
	}

	return buf.String()
}
