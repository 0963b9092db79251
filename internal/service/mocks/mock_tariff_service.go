package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tariffapi/internal/auth"
	"tariffapi/internal/model"
	"tariffapi/internal/service"
)

type MockTariffService struct {
	mock.Mock
}

func (m *MockTariffService) Preview(ctx context.Context, src service.SourceFile, uploader string) (*service.PreviewResult, error) {
	args := m.Called(ctx, src, uploader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockTariffService) Upload(ctx context.Context, src service.SourceFile, uploader string) (*service.UploadResult, error) {
	args := m.Called(ctx, src, uploader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockTariffService) List(ctx context.Context, caller auth.Caller) ([]model.TariffRecord, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TariffRecord), args.Error(1)
}

func (m *MockTariffService) Delete(ctx context.Context, id string, caller auth.Caller) error {
	args := m.Called(ctx, id, caller)
	return args.Error(0)
}
