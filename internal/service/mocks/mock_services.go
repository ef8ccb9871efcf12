package mocks

import (
	"context"

	"outlinehub/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPublishService struct {
	mock.Mock
}

func (m *MockPublishService) PublishAll(ctx context.Context) (*service.PublishResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*service.PublishResult)
	return res, args.Error(1)
}

type MockOutlineService struct {
	mock.Mock
}

func (m *MockOutlineService) ListCourse(ctx context.Context, major, code string) (*service.CourseOutlines, error) {
	args := m.Called(ctx, major, code)
	res, _ := args.Get(0).(*service.CourseOutlines)
	return res, args.Error(1)
}
