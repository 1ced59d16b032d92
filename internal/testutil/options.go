package testutil

import "github.com/zjrosen/evencheck/internal/attendance/domain"

// DefaultDate is the registration and mark date used when none is given.
const DefaultDate = "2024-03-01"

// individualData holds an individual to be added.
type individualData struct {
	id           string
	name         string
	category     string
	registeredOn string
}

// IndividualOption configures an individual.
type IndividualOption func(*individualData)

func defaultIndividual(id string) individualData {
	return individualData{
		id:           id,
		name:         "Individual " + id,
		category:     domain.DefaultCategory,
		registeredOn: DefaultDate,
	}
}

// Name sets the display name.
func Name(name string) IndividualOption {
	return func(d *individualData) { d.name = name }
}

// Category sets the category.
func Category(category string) IndividualOption {
	return func(d *individualData) { d.category = category }
}

// RegisteredOn sets the registration date.
func RegisteredOn(date string) IndividualOption {
	return func(d *individualData) { d.registeredOn = date }
}

// recordData holds a record to be added.
type recordData struct {
	id     string
	name   string
	date   string
	time   string
	method domain.Method
}

// RecordOption configures a record.
type RecordOption func(*recordData)

// At sets the time of day.
func At(clock string) RecordOption {
	return func(d *recordData) { d.time = clock }
}

// Via sets the capture method.
func Via(method domain.Method) RecordOption {
	return func(d *recordData) { d.method = method }
}

// As sets the name snapshot on the record.
func As(name string) RecordOption {
	return func(d *recordData) { d.name = name }
}
