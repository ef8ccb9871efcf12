package mocks

import (
	"context"
	"io"

	"outlinehub/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, content io.Reader, draft model.StagedFileDraft) (*model.StagedFile, error) {
	args := m.Called(ctx, content, draft)
	f, _ := args.Get(0).(*model.StagedFile)
	return f, args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]model.StagedFile, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]model.StagedFile)
	return files, args.Error(1)
}

func (m *MockRepository) UpdateMetadata(ctx context.Context, id string, record model.StagedFile) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
