package schema

// ShortHash abbreviates a commit identity to the usual seven characters for
// display. Shorter identities (synthetic test data) pass through unchanged.
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}
