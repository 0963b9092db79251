package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tariffapi/internal/model"
	"tariffapi/internal/ocr"
	"tariffapi/internal/service"
)

type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, files []ocr.Input, lang string) (*service.ExtractResult, error) {
	args := m.Called(ctx, files, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractResult), args.Error(1)
}

func (m *MockExtractionService) Export(ctx context.Context, candidates []model.Candidate) ([]byte, error) {
	args := m.Called(ctx, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
