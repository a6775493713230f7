package service_test

import (
	"github.com/UnknownOlympus/kmlforge/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockTableReader struct {
	mock.Mock
}

func (m *mockTableReader) Read(path string) (models.RecordSet, error) {
	args := m.Called(path)
	records, _ := args.Get(0).(models.RecordSet)
	return records, args.Error(1)
}

type mockTableWriter struct {
	mock.Mock
}

func (m *mockTableWriter) Write(path string, records models.RecordSet) error {
	args := m.Called(path, records)
	return args.Error(0)
}
