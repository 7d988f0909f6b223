package mcp

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	resp *domain.SearchResponse
	err  error
	got  domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.resp, nil
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	got    domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

// mockArticleService is a mock implementation of driving.ArticleService.
type mockArticleService struct {
	articles []domain.CuratedArticle
	err      error
}

func (m *mockArticleService) List(_ context.Context) ([]domain.CuratedArticle, error) {
	return m.articles, m.err
}

func (m *mockArticleService) Get(_ context.Context, id int64) (*domain.CuratedArticle, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.articles {
		if m.articles[i].ID == id {
			return &m.articles[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
