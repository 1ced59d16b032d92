package sqlite

import "github.com/zjrosen/evencheck/internal/attendance/domain"

// individualModel is a row of the individuals table.
type individualModel struct {
	ID           string
	Name         string
	Category     string
	RegisteredOn string
}

// recordModel is a row of the records table. Seq preserves insertion order.
type recordModel struct {
	Seq       int64
	StudentID string
	Name      string
	Date      string
	Time      string
	Method    string
	Status    string
}

func toIndividualModel(ind domain.Individual) individualModel {
	return individualModel{
		ID:           ind.ID,
		Name:         ind.Name,
		Category:     ind.Category,
		RegisteredOn: ind.RegisteredOn,
	}
}

func (m individualModel) toDomain() domain.Individual {
	category := m.Category
	if category == "" {
		category = domain.UnspecifiedCategory
	}
	return domain.Individual{
		ID:           m.ID,
		Name:         m.Name,
		Category:     category,
		RegisteredOn: m.RegisteredOn,
	}
}

func toRecordModel(rec domain.Record) recordModel {
	return recordModel{
		StudentID: rec.ID,
		Name:      rec.Name,
		Date:      rec.Date,
		Time:      rec.Time,
		Method:    string(rec.Method),
		Status:    string(rec.Status),
	}
}

func (m recordModel) toDomain() domain.Record {
	return domain.Record{
		ID:     m.StudentID,
		Name:   m.Name,
		Date:   m.Date,
		Time:   m.Time,
		Method: domain.Method(m.Method),
		Status: domain.Status(m.Status),
	}
}
