// Package adsapi defines the reconciliation engine's external
// collaborators: the ORCID profile source, the updates feed, the
// profile-status callback, the author-info/metadata lookups, and the
// downstream output sink. Each is a small interface so the pipeline can be
// exercised against a fake in tests without a real network.
package adsapi

import (
	"context"
	"time"
)

// Identifier is one external identifier attached to an ORCID work, e.g.
// {Type: "doi", Value: "10.1234/foo"}.
type Identifier struct {
	Type  string
	Value string
}

// OrcidWork is a single work entry as returned by the ORCID profile
// source, before bibcode resolution.
type OrcidWork struct {
	Identifiers []Identifier
	Updated     time.Time
	Provenance  string
}

// OrcidProfile is the full external ORCID profile payload for one ORCID
// iD.
type OrcidProfile struct {
	Works    []OrcidWork
	Modified time.Time
}

// ProfileSource fetches an ORCID profile's works list.
// Grounded on API_ORCID_EXPORT_PROFILE.
type ProfileSource interface {
	FetchProfile(ctx context.Context, orcidID, token, profileURL string) (*OrcidProfile, error)
}

// UpdateEntry is one row of the updates feed: a profile that changed since
// the requested timestamp.
type UpdateEntry struct {
	OrcidID string
	Updated time.Time
	Created time.Time
}

// UpdatesFeed lists ORCID profiles that changed since a checkpoint.
// Grounded on API_ORCID_UPDATES_ENDPOINT.
type UpdatesFeed interface {
	FetchUpdatesSince(ctx context.Context, since time.Time) ([]UpdateEntry, error)
}

// BibcodeStatus is one entry of a profile-status callback payload.
type BibcodeStatus struct {
	Bibcode string
	Status  string // "verified" or "rejected"
}

// StatusCallback reports per-bibcode claim outcomes back to the author
// profile service. Grounded on API_ORCID_UPDATE_BIB_STATUS.
type StatusCallback interface {
	PostBibcodeStatus(ctx context.Context, orcidID string, statuses []BibcodeStatus) (map[string]string, error)
}

// AuthorInfo is the facts bag the store persists for a profile: canonical
// name plus the closed set of name-variant fields.
type AuthorInfo struct {
	Name  string
	Facts map[string][]string
}

// AuthorInfoSource harvests fresh author facts for a profile, combining
// the ORCID profile endpoint with a search-index name-variant query.
// Grounded on API_ORCID_PROFILE_ENDPOINT.
type AuthorInfoSource interface {
	FetchAuthorInfo(ctx context.Context, orcidID string) (*AuthorInfo, error)
}

// RecordMetadata is the projection of a bibliographic record the importer
// and match-claim stage need: its canonical bibcode, author list, and the
// identifiers that resolve to it.
type RecordMetadata struct {
	Bibcode     string
	Authors     []string
	Identifiers []Identifier
}

// MetadataLookup resolves an identifier (or a bibcode directly) to a
// record's canonical metadata.
type MetadataLookup interface {
	// LookupByIdentifier resolves an external identifier to its canonical
	// record, or (nil, nil) if no known record matches.
	LookupByIdentifier(ctx context.Context, idType, idValue string) (*RecordMetadata, error)
	// LookupByBibcode fetches metadata directly for an already-known
	// bibcode.
	LookupByBibcode(ctx context.Context, bibcode string) (*RecordMetadata, error)
}

// OutputMessage is the payload forwarded to the downstream sink after a
// successful claim application.
type OutputMessage struct {
	Bibcode    string
	Authors    []string
	Verified   []string
	Unverified []string
}

// OutputSink accepts finished claim-application results for downstream
// indexing. The wire format is opaque to this engine.
type OutputSink interface {
	Send(ctx context.Context, msg OutputMessage) error
}
