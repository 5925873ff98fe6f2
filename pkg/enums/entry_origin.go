package enums

// EntryOrigin records which source produced a ledger entry. It drives merge
// and dedup decisions plus UI badges, never balance math.
type EntryOrigin string

const (
	EntryOriginRemote       EntryOrigin = "remote"
	EntryOriginLocalPending EntryOrigin = "local_pending"
	EntryOriginDerived      EntryOrigin = "derived"
)

var validEntryOrigins = []EntryOrigin{
	EntryOriginRemote,
	EntryOriginLocalPending,
	EntryOriginDerived,
}

// IsValid reports whether the value matches the canonical origin enum.
func (o EntryOrigin) IsValid() bool {
	for _, candidate := range validEntryOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}
