package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
)

// registryEntry is the on-disk shape of one registry value.
type registryEntry struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	AddedDate  string `json:"added_date"`
}

func encodeRegistry(individuals []domain.Individual) ([]byte, error) {
	doc := make(map[string]registryEntry, len(individuals))
	for _, ind := range individuals {
		doc[ind.ID] = registryEntry{
			Name:       ind.Name,
			Department: ind.Category,
			AddedDate:  ind.RegisteredOn,
		}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding registry: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeRegistry parses the registry document. Entries without a department
// read as domain.UnspecifiedCategory. Whitespace-only input is an empty
// registry.
func decodeRegistry(data []byte) ([]domain.Individual, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Individual{}, nil
	}
	var doc map[string]registryEntry
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}
	out := make([]domain.Individual, 0, len(doc))
	for id, e := range doc {
		category := e.Department
		if category == "" {
			category = domain.UnspecifiedCategory
		}
		out = append(out, domain.Individual{
			ID:           id,
			Name:         e.Name,
			Category:     category,
			RegisteredOn: e.AddedDate,
		})
	}
	return out, nil
}
