package kbi_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/scrypster/kbbridge/pkg/kbi"
	"github.com/scrypster/kbbridge/pkg/types"
)

// mockService is a testify mock of kbi.KnowledgeService.
type mockService struct {
	mock.Mock
}

var _ kbi.KnowledgeService = (*mockService)(nil)

func (m *mockService) UpdateKnowledgeBase(ctx context.Context, op types.UpdateOp, item types.KnowledgeItem) error {
	return m.Called(op, item).Error(0)
}

func (m *mockService) GetCurrentInstances(ctx context.Context, typeName string) ([]string, error) {
	args := m.Called(typeName)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockService) GetCurrentKnowledge(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	args := m.Called(predicateName)
	items, _ := args.Get(0).([]types.KnowledgeItem)
	return items, args.Error(1)
}

func (m *mockService) GetCurrentGoals(ctx context.Context, predicateName string) ([]types.KnowledgeItem, error) {
	args := m.Called(predicateName)
	items, _ := args.Get(0).([]types.KnowledgeItem)
	return items, args.Error(1)
}

func (m *mockService) GetDomainPredicates(ctx context.Context) ([]types.DomainPredicate, error) {
	args := m.Called()
	preds, _ := args.Get(0).([]types.DomainPredicate)
	return preds, args.Error(1)
}

func (m *mockService) GetDomainTypes(ctx context.Context) ([]string, error) {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *mockService) GetDomainOperators(ctx context.Context) ([]types.DomainOperator, error) {
	args := m.Called()
	ops, _ := args.Get(0).([]types.DomainOperator)
	return ops, args.Error(1)
}

func (m *mockService) QueryKnowledgeBase(ctx context.Context, items []types.KnowledgeItem) (types.QueryResult, error) {
	args := m.Called(items)
	res, _ := args.Get(0).(types.QueryResult)
	return res, args.Error(1)
}

func (m *mockService) ClearKnowledgeBase(ctx context.Context) error {
	return m.Called().Error(0)
}

// mockStore is a testify mock of kbi.DocumentStore.
type mockStore struct {
	mock.Mock
}

var _ kbi.DocumentStore = (*mockStore)(nil)

func (m *mockStore) InsertNamed(ctx context.Context, name, docType string, body []byte) (string, error) {
	args := m.Called(name, docType, body)
	return args.String(0), args.Error(1)
}

func (m *mockStore) QueryNamed(ctx context.Context, name, docType string) (*types.Document, error) {
	args := m.Called(name, docType)
	doc, _ := args.Get(0).(*types.Document)
	return doc, args.Error(1)
}

func (m *mockStore) DeleteNamed(ctx context.Context, name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
