package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gitpilot/internal/models"
)

type repoListResponse struct {
	Repositories []models.Repository `json:"repositories"`
	HasMore      bool                `json:"has_more"`
	TotalCount   int                 `json:"total_count"`
}

// ListRepos fetches one page of repositories visible to the current
// token. An empty query is browse mode; a non-empty query is search mode
// and the server reports a filtered total.
func (c *Client) ListRepos(ctx context.Context, query string, page, perPage int) (*models.RepoPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	q := url.Values{}
	if query != "" {
		q.Set("query", query)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var resp repoListResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/repos?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &models.RepoPage{
		Repositories: resp.Repositories,
		HasMore:      resp.HasMore,
		TotalCount:   resp.TotalCount,
		Page:         page,
		Query:        query,
	}, nil
}

type repoTreeResponse struct {
	Files []models.TreeEntry `json:"files"`
}

// RepoTree fetches the flat file listing of a repository.
func (c *Client) RepoTree(ctx context.Context, owner, name string) ([]models.TreeEntry, error) {
	if owner == "" || name == "" {
		return nil, fmt.Errorf("owner and name are required")
	}
	path := fmt.Sprintf("/api/repos/%s/%s/tree", url.PathEscape(owner), url.PathEscape(name))
	var resp repoTreeResponse
	if _, err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// RepoAccess fetches the raw write-access answer for a repository. The
// upstream check is known to return transiently stale app_installed
// values; classification and the bounded re-check live in the context
// service, not here.
func (c *Client) RepoAccess(ctx context.Context, owner, name string) (*models.RepoAccess, error) {
	if owner == "" || name == "" {
		return nil, fmt.Errorf("owner and name are required")
	}
	q := url.Values{}
	q.Set("owner", owner)
	q.Set("repo", name)
	var access models.RepoAccess
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/repo-access?"+q.Encode(), nil, &access); err != nil {
		return nil, err
	}
	return &access, nil
}
