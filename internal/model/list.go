package model

// List is a user-curated collection of mountains ("Colorado 14ers" and the
// like). Private lists are visible to their owner only.
type List struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Private     bool    `db:"private"`
	Description *string `db:"description"`
	OwnerID     string  `db:"owner_id"`

	Mountains []Mountain `db:"-"`
}
