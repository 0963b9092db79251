package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tariffapi/internal/auth"
	"tariffapi/internal/model"
	"tariffapi/internal/repository"
	repoMocks "tariffapi/internal/repository/mocks"
	"tariffapi/internal/storage"
	storeMocks "tariffapi/internal/storage/mocks"
)

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func validSource(t *testing.T) SourceFile {
	return SourceFile{
		Filename:    "tarife.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data: workbook(t,
			[]any{"Kalkış", "Varış", "Fiyat"},
			[]any{"Ankara", "İzmir", "450₺"},
			[]any{"Bursa", "Bolu", 300},
		),
	}
}

func TestTariffService_Preview(t *testing.T) {
	ctx := context.Background()
	svc := NewTariffService(new(repoMocks.MockTariffRepository), nil, nil, nil, nil)

	tests := []struct {
		name    string
		src     SourceFile
		wantErr error
		wantN   int
	}{
		{name: "happy path", src: validSource(t), wantN: 2},
		{name: "no file", src: SourceFile{Filename: "x.xlsx"}, wantErr: ErrFileRequired},
		{name: "corrupt workbook", src: SourceFile{Filename: "x.xlsx", Data: []byte("nope")}, wantErr: ErrParse},
		{name: "header only", src: SourceFile{Data: workbook(t, []any{"Kalkış", "Varış"})}, wantErr: ErrValidation},
		{name: "no usable rows", src: SourceFile{Data: workbook(t, []any{"Kalkış", "Fiyat"}, []any{"Ankara", 10})}, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Preview(ctx, tt.src, "")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantN, res.Count)
			assert.Equal(t, "Ankara - İzmir", res.Data[0].Route)
			assert.Equal(t, model.AnonymousUploader, res.Data[0].UploadedBy)
			assert.Empty(t, res.Data[0].ID)
		})
	}
}

func TestTariffService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		withStore  bool
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTariffRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:      "happy path with archive",
			withStore: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTariffRepository) {
				mStore.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "sources/") && strings.HasSuffix(key, ".xlsx")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Metadata["uploaded-by"] == "alice" && opt.Metadata["original-filename"] == "tarife.xlsx" && opt.Size > 0
				})).Return(func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key}
				}, nil)

				mRepo.On("Append", mock.Anything, mock.MatchedBy(func(recs []model.TariffRecord) bool {
					return len(recs) == 2 && recs[0].UploadedBy == "alice" && recs[1].Route == "Bursa - Bolu"
				})).Return([]string{"id-1", "id-2"}, nil)
			},
		},
		{
			name: "happy path without store",
			setupMocks: func(_ *storeMocks.MockStorage, mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("Append", mock.Anything, mock.Anything).Return([]string{"id-1", "id-2"}, nil)
			},
		},
		{
			name:      "archive failure",
			withStore: true,
			setupMocks: func(mStore *storeMocks.MockStorage, _ *repoMocks.MockTariffRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("bucket gone"))
			},
			wantErrMsg: "archive source: bucket gone",
		},
		{
			name:      "append failure rolls back archive",
			withStore: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTariffRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "sources/abc.xlsx"}, nil)
				mRepo.On("Append", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
				mStore.On("Delete", mock.Anything, "sources/abc.xlsx").Return(nil)
			},
			wantErrMsg: "append records failed: disk full",
		},
		{
			name:      "append and rollback failure",
			withStore: true,
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTariffRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "sources/abc.xlsx"}, nil)
				mRepo.On("Append", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
				mStore.On("Delete", mock.Anything, "sources/abc.xlsx").Return(errors.New("timeout"))
			},
			wantErrMsg: "rollback delete failed: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockTariffRepository)
			tt.setupMocks(mStore, mRepo)

			var store storage.Storage
			if tt.withStore {
				store = mStore
			}
			svc := NewTariffService(mRepo, store, nil, nil, nil)

			res, err := svc.Upload(ctx, validSource(t), " alice ")
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, res)
			default:
				require.NoError(t, err)
				assert.Equal(t, &UploadResult{OK: true, Inserted: 2, IDs: []string{"id-1", "id-2"}}, res)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestTariffService_Upload_InvalidSourceTouchesNothing(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockTariffRepository)
	svc := NewTariffService(mRepo, mStore, nil, nil, nil)

	_, err := svc.Upload(context.Background(), SourceFile{Data: []byte("garbage")}, "alice")
	assert.ErrorIs(t, err, ErrParse)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestTariffService_List(t *testing.T) {
	ctx := context.Background()
	all := []model.TariffRecord{{ID: "1", UploadedBy: "alice"}, {ID: "2", UploadedBy: "bob"}}

	t.Run("admin sees everything", func(t *testing.T) {
		mRepo := new(repoMocks.MockTariffRepository)
		mRepo.On("ListAll", ctx).Return(all, nil)

		got, err := NewTariffService(mRepo, nil, nil, nil, nil).List(ctx, auth.Caller{Identity: "bob", Admin: true})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		mRepo.AssertExpectations(t)
	})

	t.Run("user sees own", func(t *testing.T) {
		mRepo := new(repoMocks.MockTariffRepository)
		mRepo.On("ListByOwner", ctx, "alice").Return(all[:1], nil)

		got, err := NewTariffService(mRepo, nil, nil, nil, nil).List(ctx, auth.Caller{Identity: "alice"})
		require.NoError(t, err)
		assert.Equal(t, all[:1], got)
		mRepo.AssertExpectations(t)
	})

	t.Run("no identity", func(t *testing.T) {
		mRepo := new(repoMocks.MockTariffRepository)

		_, err := NewTariffService(mRepo, nil, nil, nil, nil).List(ctx, auth.Caller{})
		assert.ErrorIs(t, err, ErrIdentityRequired)
		assert.ErrorIs(t, err, ErrAuthorization)
		mRepo.AssertNotCalled(t, "ListAll", mock.Anything)
	})
}

func TestTariffService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		caller     auth.Caller
		setupMocks func(mRepo *repoMocks.MockTariffRepository)
		wantErr    error
	}{
		{
			name:   "owner",
			id:     "id-1",
			caller: auth.Caller{Identity: "alice"},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("Delete", ctx, "id-1", "alice", false).Return(nil)
			},
		},
		{
			name:   "admin without identity",
			id:     "id-1",
			caller: auth.Caller{Admin: true},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("Delete", ctx, "id-1", "", true).Return(nil)
			},
		},
		{
			name:   "other owner",
			id:     "id-1",
			caller: auth.Caller{Identity: "bob"},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("Delete", ctx, "id-1", "bob", false).Return(repository.ErrForbidden)
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "unknown id",
			id:     "nope",
			caller: auth.Caller{Identity: "bob"},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("Delete", ctx, "nope", "bob", false).Return(repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "anonymous on unknown id gets not found first",
			id:     "nope",
			caller: auth.Caller{},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "anonymous on existing id",
			id:     "id-1",
			caller: auth.Caller{},
			setupMocks: func(mRepo *repoMocks.MockTariffRepository) {
				mRepo.On("FindByID", ctx, "id-1").Return(&model.TariffRecord{ID: "id-1"}, nil)
			},
			wantErr: ErrIdentityRequired,
		},
		{
			name:       "blank id",
			id:         " ",
			caller:     auth.Caller{Identity: "alice"},
			setupMocks: func(*repoMocks.MockTariffRepository) {},
			wantErr:    ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockTariffRepository)
			tt.setupMocks(mRepo)

			err := NewTariffService(mRepo, nil, nil, nil, nil).Delete(ctx, tt.id, tt.caller)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
		})
	}
}
