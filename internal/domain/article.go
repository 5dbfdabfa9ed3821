package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Status enumerates the approval lifecycle of an article.
type Status string

const (
	StatusDrafted          Status = "drafted"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusPublished        Status = "published"
)

// Article is the core entity moving through draft, approval, and publish.
// ArticleID is derived once from the canonical source URL and never changes.
type Article struct {
	ArticleID        string
	CanonicalURL     string
	Title            string
	ApprovedTitle    string
	Subtitle         string
	ShortDescription string
	ArticleHTML      string
	ImageURL         string
	ReporterName     string
	MetaDescription  string
	Slug             string
	ProposedTitles   []string
	Tags             []string
	Status           Status
	NeedsRegen       bool
	RunID            string
	CMSID            string
	PublishedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Candidate is a discovered news item before drafting.
type Candidate struct {
	Title       string
	URL         string
	Source      string
	ImageURL    string
	Author      string
	PublishedAt time.Time
}

// DraftFields holds the generated content attached to a candidate.
type DraftFields struct {
	ShortDescription string
	Subtitle         string
	WhyBullets       []string
	FactsBullets     []string
	ProposedTitles   []string
	SourceHost       string
}

// ArticleIDFromURL derives the stable content identifier from a canonical URL.
func ArticleIDFromURL(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return "art_" + hex.EncodeToString(sum[:])[:24]
}
