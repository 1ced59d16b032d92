package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// StudentsHeader is the header of the students list export.
var StudentsHeader = []string{"Student ID", "Name", "Department", "Added Date"}

// WriteIndividuals writes the students list export to w.
func WriteIndividuals(w io.Writer, individuals []domain.Individual) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StudentsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, ind := range individuals {
		if err := cw.Write([]string{ind.ID, ind.Name, ind.Category, ind.RegisteredOn}); err != nil {
			return fmt.Errorf("writing individual %s: %w", ind.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
