package grading

// SubjectInput is a fixed set of subject rows. It copies its entries on the
// way in and out, so a caller cannot change it after construction.
type SubjectInput struct {
	entries []SubjectEntry
}

// NewSubjectInput captures the rows in order.
func NewSubjectInput(entries ...SubjectEntry) SubjectInput {
	return SubjectInput{entries: append([]SubjectEntry(nil), entries...)}
}

func (in SubjectInput) Count() int { return len(in.entries) }

func (in SubjectInput) Entries() []SubjectEntry {
	return append([]SubjectEntry(nil), in.entries...)
}

// Check applies the form bounds to every row.
func (in SubjectInput) Check(b Bounds) error {
	return b.CheckSubjects(in.entries)
}

// Aggregate computes the SGPA and the values derived from it.
func (in SubjectInput) Aggregate() (AggregateResult, error) {
	v, err := SGPA(in.entries)
	if err != nil {
		return AggregateResult{}, err
	}
	return Derive(v), nil
}

// SemesterInput is a fixed set of semester rows.
type SemesterInput struct {
	entries []SemesterEntry
}

// NewSemesterInput captures the rows in order.
func NewSemesterInput(entries ...SemesterEntry) SemesterInput {
	return SemesterInput{entries: append([]SemesterEntry(nil), entries...)}
}

func (in SemesterInput) Count() int { return len(in.entries) }

func (in SemesterInput) Entries() []SemesterEntry {
	return append([]SemesterEntry(nil), in.entries...)
}

// Check applies the form bounds to every row.
func (in SemesterInput) Check(b Bounds) error {
	return b.CheckSemesters(in.entries)
}

// Aggregate computes the CGPA under policy and the values derived from it.
func (in SemesterInput) Aggregate(policy Policy) (AggregateResult, error) {
	v, err := CGPA(policy, in.entries)
	if err != nil {
		return AggregateResult{}, err
	}
	return Derive(v), nil
}
