// Package search provides full-text search over the project catalog,
// backed by Meilisearch with a PostgreSQL fallback.
package search

// Result is a single catalog hit returned to the caller.
type Result struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	ClientEmail string `json:"clientEmail"`
	ClientName  string `json:"clientName"`
	Budget      int64  `json:"budget"`
	Deadline    string `json:"deadline"`
	Skills      string `json:"skills"`
	Status      string `json:"status"`
}

// Query describes a catalog search request.
type Query struct {
	Text         string
	FilterStatus string // empty = all statuses
	FilterClient string
	Limit        int
	Offset       int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search over the catalog.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// ProjectRecord is the data we index for a project.
type ProjectRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Skills      string `json:"skills"`
	ClientEmail string `json:"clientEmail"`
	ClientName  string `json:"clientName"`
	Budget      int64  `json:"budget"`
	Deadline    string `json:"deadline"`
	Status      string `json:"status"`
	// DocID is the Meilisearch primary key. Project titles can contain
	// characters Meilisearch rejects in document IDs, so we hash them.
	DocID string `json:"docId"`
}
