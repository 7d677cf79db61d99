package repository

// visibilityClause returns the SQL predicate restricting rows of the aliased
// table to what the requester may see, plus its bind args. Applying the rule
// in the query (rather than post-filtering rows in Go) is what keeps page
// offsets and total counts correct.
func visibilityClause(alias string, vis Visibility) (string, []any) {
	if vis.RequesterID == "" {
		return alias + ".privacy = 'PUBLIC'", nil
	}
	// FOLLOWERS_ONLY is written as its own branch even though it currently
	// behaves like PRIVATE: the follower graph is not modeled yet, and a
	// separate branch keeps that gap visible and independently testable.
	return "(" + alias + ".privacy = 'PUBLIC'" +
			" OR (" + alias + ".privacy = 'PRIVATE' AND " + alias + ".user_id = ?)" +
			" OR (" + alias + ".privacy = 'FOLLOWERS_ONLY' AND " + alias + ".user_id = ?))",
		[]any{vis.RequesterID, vis.RequesterID}
}
