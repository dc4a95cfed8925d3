package models

// Repository summarizes a repository available to the current token.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

// RepoPage is one page of repository results. TotalCount is only
// meaningful in search mode; browse mode paginates on HasMore alone.
type RepoPage struct {
	Repositories []Repository `json:"repositories"`
	HasMore      bool         `json:"has_more"`
	TotalCount   int          `json:"total_count,omitempty"`
	Page         int          `json:"page"`
	Query        string       `json:"query,omitempty"`
}

// TreeEntry is one path in a repository's flat file listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "file" | "dir"
}

// AccessLevel classifies what the current token can do to a repository.
type AccessLevel string

const (
	// AccessAppInstalled: push access and the GitHub App is installed.
	AccessAppInstalled AccessLevel = "app-installed"
	// AccessPendingRecheck: push access reported but the app not yet
	// detected; the upstream check is known to return stale results, so
	// one delayed re-check runs before a verdict.
	AccessPendingRecheck AccessLevel = "pending-recheck"
	// AccessPushNoApp: push access confirmed, app still absent after the
	// re-check.
	AccessPushNoApp AccessLevel = "push-no-app"
	// AccessReadOnly: no push access.
	AccessReadOnly AccessLevel = "read-only"
)

// RepoAccess is the raw answer from the access-check endpoint.
type RepoAccess struct {
	CanWrite     bool   `json:"can_write"`
	AppInstalled bool   `json:"app_installed"`
	AuthType     string `json:"auth_type,omitempty"`
}

// ProjectContext is everything the context panel shows for a selected
// repository.
type ProjectContext struct {
	Repository Repository  `json:"repository"`
	Branch     string      `json:"branch"`
	FileCount  int         `json:"fileCount"`
	Files      []TreeEntry `json:"files"`
	Access     AccessLevel `json:"access"`
}
