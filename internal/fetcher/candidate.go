package fetcher

import (
	"fmt"
	"net/url"
)

// listingPath is the fighter directory page; char selects the last-name initial.
const listingPath = "/statistics/fighters?char=%s&page=all"

// Candidate is one scheme/host combination a listing page may be served from.
type Candidate struct {
	Name   string
	Scheme string
	Host   string
}

// URL renders the listing page address for key.
func (c Candidate) URL(key string) string {
	return fmt.Sprintf("%s://%s"+listingPath, c.Scheme, c.Host, url.QueryEscape(key))
}

// DefaultCandidates returns the endpoints for domain in preference order:
// plain HTTP, HTTP on the www host, then HTTPS.
func DefaultCandidates(domain string) []Candidate {
	return []Candidate{
		{Name: "http", Scheme: "http", Host: domain},
		{Name: "www-http", Scheme: "http", Host: "www." + domain},
		{Name: "https", Scheme: "https", Host: domain},
	}
}
