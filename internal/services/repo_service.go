package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/models"
	"gitpilot/internal/repositories"
)

const defaultPageSize = 30

// RepoService pages through the repositories visible to the current
// token and tracks the active selection. A new query resets to page one
// and replaces accumulated rows; LoadMore appends. The selection lives
// in memory only and is dropped on logout.
type RepoService struct {
	ctx     context.Context
	api     *apiclient.Client
	recents repositories.RecentRepoRepository

	mu       sync.Mutex
	query    string
	page     int
	rows     []models.Repository
	hasMore  bool
	total    int
	selected *models.Repository
}

func NewRepoService(api *apiclient.Client, recents repositories.RecentRepoRepository) *RepoService {
	return &RepoService{api: api, recents: recents}
}

func (s *RepoService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// Search issues a fresh listing for the query, resetting pagination and
// replacing any previously loaded rows.
func (s *RepoService) Search(ctx context.Context, query string) (*models.RepoPage, error) {
	query = strings.TrimSpace(query)
	page, err := s.api.ListRepos(ctx, query, 1, defaultPageSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.query = query
	s.page = 1
	s.rows = append([]models.Repository(nil), page.Repositories...)
	s.hasMore = page.HasMore
	s.total = page.TotalCount
	s.mu.Unlock()
	return page, nil
}

// LoadMore fetches the next page for the current query and appends it.
func (s *RepoService) LoadMore(ctx context.Context) (*models.RepoPage, error) {
	s.mu.Lock()
	if !s.hasMore {
		s.mu.Unlock()
		return nil, errors.New("no more repositories to load")
	}
	query := s.query
	next := s.page + 1
	s.mu.Unlock()

	page, err := s.api.ListRepos(ctx, query, next, defaultPageSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// A Search that ran meanwhile owns the listing; drop this page.
	if s.query == query && s.page == next-1 {
		s.page = next
		s.rows = append(s.rows, page.Repositories...)
		s.hasMore = page.HasMore
		if page.TotalCount > 0 {
			s.total = page.TotalCount
		}
	}
	s.mu.Unlock()
	return page, nil
}

// Rows returns the accumulated listing for rendering.
func (s *RepoService) Rows() []models.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Repository(nil), s.rows...)
}

// Select makes a repository the active one and records it in the
// recent-repositories table. The recorded entry only feeds a quick-pick;
// the selection itself is never restored on relaunch.
func (s *RepoService) Select(repo models.Repository) error {
	if repo.Owner == "" || repo.Name == "" {
		return errors.New("repository owner and name are required")
	}
	if repo.FullName == "" {
		repo.FullName = repo.Owner + "/" + repo.Name
	}

	s.mu.Lock()
	s.selected = &repo
	s.mu.Unlock()

	if s.recents != nil {
		if err := s.recents.Touch(context.Background(), &repo); err != nil {
			return err
		}
	}
	return nil
}

// Selected returns the active repository, or nil.
func (s *RepoService) Selected() *models.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return nil
	}
	copied := *s.selected
	return &copied
}

// RecentRepos lists previously selected repositories, newest first.
func (s *RepoService) RecentRepos(limit int) ([]models.RecentRepo, error) {
	if s.recents == nil {
		return nil, nil
	}
	return s.recents.List(context.Background(), limit)
}

// Reset drops the selection and the accumulated listing. Runs on logout.
func (s *RepoService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.rows = nil
	s.query = ""
	s.page = 0
	s.hasMore = false
	s.total = 0
}
