package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tariffapi/internal/model"
)

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) Append(ctx context.Context, records []model.TariffRecord) ([]string, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTariffRepository) ListAll(ctx context.Context) ([]model.TariffRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TariffRecord), args.Error(1)
}

func (m *MockTariffRepository) ListByOwner(ctx context.Context, owner string) ([]model.TariffRecord, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TariffRecord), args.Error(1)
}

func (m *MockTariffRepository) FindByID(ctx context.Context, id string) (*model.TariffRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TariffRecord), args.Error(1)
}

func (m *MockTariffRepository) Delete(ctx context.Context, id, requester string, admin bool) error {
	args := m.Called(ctx, id, requester, admin)
	return args.Error(0)
}
