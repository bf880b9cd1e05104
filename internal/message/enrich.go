package message

// ChildIdentity pairs an actor id with a national identifier, as returned by
// the relationship lookup.
type ChildIdentity struct {
	ActorID    string
	NationalID string
}

// Enrich fills in missing child national identifiers by matching actor ids
// against the caller's registered children. It returns a new message value
// and never modifies its input: identifiers already present are kept, and
// children without a match are left for validation to reject. Running it
// twice with the same pairs is a no-op the second time.
func Enrich(m Message, registered []ChildIdentity) Message {
	if len(m.Children) == 0 || len(registered) == 0 {
		return m
	}

	filled := make([]Child, len(m.Children))
	copy(filled, m.Children)
	for i := range filled {
		if !filled[i].MissingNationalID() || filled[i].ActorID == "" {
			continue
		}
		for _, pair := range registered {
			if pair.ActorID == filled[i].ActorID {
				filled[i].NationalID = pair.NationalID
				break
			}
		}
	}
	m.Children = filled
	return m
}
