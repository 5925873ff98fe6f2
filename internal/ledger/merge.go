package ledger

// Merge combines the three entry sources into one deduplicated set.
//
// The policy is deliberately asymmetric: when the remote ledger returned
// anything for an account it is assumed complete, so derived entries for that
// account are suppressed entirely. Derived entries are a reconstruction for
// when the authoritative source cannot be reached at all, not a supplement to
// a working one. Pending entries are always included; a remote row with the
// same identity (by id or by composite match) supersedes them.
func Merge(remote, pending, derived []Entry) []Entry {
	merged := make([]Entry, 0, len(remote)+len(pending)+len(derived))
	seen := make(map[string]struct{})
	remoteComposites := make(map[string]struct{})
	remoteAccounts := make(map[string]struct{})

	add := func(entry Entry) bool {
		key := entry.IdentityKey()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		merged = append(merged, entry)
		return true
	}

	for _, entry := range remote {
		if add(entry) {
			remoteAccounts[entry.AccountID] = struct{}{}
			remoteComposites[entry.CompositeKey()] = struct{}{}
		}
	}

	for _, entry := range pending {
		// A remote row matching on the composite identity means the server
		// already holds this transaction under its own id.
		if _, promoted := remoteComposites[entry.CompositeKey()]; promoted {
			continue
		}
		add(entry)
	}

	for _, entry := range derived {
		if _, hasRemote := remoteAccounts[entry.AccountID]; hasRemote {
			continue
		}
		add(entry)
	}

	return merged
}

// ExistingIDs collects the identity ids of the given entries, for the
// projector's double-count guard.
func ExistingIDs(sets ...[]Entry) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, set := range sets {
		for _, entry := range set {
			if entry.ID != "" {
				ids[entry.ID] = struct{}{}
			}
		}
	}
	return ids
}
