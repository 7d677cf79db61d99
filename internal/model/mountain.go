package model

// Mountain is a catalogue entry. Rows are created by the seeder and never
// mutated by user actions.
type Mountain struct {
	ID            int64    `db:"id"`
	Source        string   `db:"source"`
	SourceID      string   `db:"source_id"`
	Name          string   `db:"name"`
	Lon           float64  `db:"lon"`
	Lat           float64  `db:"lat"`
	Elevation     *float64 `db:"elevation"`
	Timezone      string   `db:"timezone"`
	WikipediaLink *string  `db:"wikipedia_link"`
	Abstract      *string  `db:"abstract"`
}

// MountainDistance pairs a mountain with its distance from a reference point.
type MountainDistance struct {
	Mountain
	DistanceM float64 `db:"distance_m"`
}

// MountainSourceDBpedia is the only catalogue source currently imported.
const MountainSourceDBpedia = "dbpedia"
