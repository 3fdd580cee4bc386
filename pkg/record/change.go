package record

// Change is one operation of a zone change plan. The set of implementations
// is closed: Create, Update and Delete.
type Change interface {
	// Record returns the record the change targets: the new record for
	// Create and Update, the existing one for Delete.
	Record() Record

	// Kind returns "create", "update" or "delete".
	Kind() string

	isChange()
}

// Create adds a record that does not exist yet.
type Create struct {
	New Record
}

// Update replaces an existing record. Existing may be nil when the current
// state is unknown, e.g. records the vendor provisions on zone creation.
type Update struct {
	Existing *Record
	New      Record
}

// Delete removes an existing record.
type Delete struct {
	Existing Record
}

func (c Create) Record() Record { return c.New }
func (c Update) Record() Record { return c.New }
func (c Delete) Record() Record { return c.Existing }

func (Create) Kind() string { return "create" }
func (Update) Kind() string { return "update" }
func (Delete) Kind() string { return "delete" }

func (Create) isChange() {}
func (Update) isChange() {}
func (Delete) isChange() {}
