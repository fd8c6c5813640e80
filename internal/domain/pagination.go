package domain

// Cursor is an opaque resumption token for a listing. It currently wraps the
// last-seen document ID under the listing's fixed ordering, but callers must
// treat it as opaque so richer resume state can be encoded later without
// breaking the contract. An empty cursor starts from the beginning.
type Cursor string

// MaxExclusionPerQuery caps how many identifiers a single repository query
// may exclude. It mirrors the ten-value limit of the original platform's
// exclusion operator; larger exclusion sets are handled by post-filtering in
// the usecase, never by silent truncation of the set.
const MaxExclusionPerQuery = 10

// UserPage is one page of user candidates with its resumption token.
// HasMore is a heuristic (a full page probably has a successor); callers
// must tolerate a final empty page.
type UserPage struct {
	Items      []*User
	NextCursor Cursor
	HasMore    bool
}

// ProfessionalPage is one page of directory entries.
type ProfessionalPage struct {
	Items      []*Professional
	NextCursor Cursor
	HasMore    bool
}
