package intent

// Intent classifies a query and determines which knowledge sources the
// retrieval step consults. It arrives as input with every submit; the core
// never infers it.
type Intent string

const (
	IntentNone       Intent = "none"
	IntentUserDocs   Intent = "user_docs"
	IntentSystemDocs Intent = "system_docs"
	IntentHybrid     Intent = "hybrid"
)

// Source is one queryable index.
type Source int

const (
	SourcePersonal Source = iota
	SourceSystem
)

// Label returns the provenance label shown to the UI for this source.
func (s Source) Label() string {
	if s == SourcePersonal {
		return "User Docs"
	}
	return "System Docs"
}

// Heading returns the context-section heading emitted for this source.
func (s Source) Heading() string {
	if s == SourcePersonal {
		return "### Personal Context (user uploads)\n"
	}
	return "### System Context (company docs)\n"
}

// Parse maps a raw intent label to a closed Intent value. Unrecognized
// labels fall open to IntentNone: an unknown intent means "no retrieval",
// never a failed turn.
func Parse(raw string) Intent {
	switch Intent(raw) {
	case IntentUserDocs, IntentSystemDocs, IntentHybrid:
		return Intent(raw)
	default:
		return IntentNone
	}
}

// Route returns the sources to query for an intent, in query order. The
// personal index always comes first so that "User Docs" provenance precedes
// "System Docs" when both contribute. An empty result means the turn skips
// embedding and retrieval entirely.
func Route(i Intent) []Source {
	switch i {
	case IntentUserDocs:
		return []Source{SourcePersonal}
	case IntentSystemDocs:
		return []Source{SourceSystem}
	case IntentHybrid:
		return []Source{SourcePersonal, SourceSystem}
	default:
		return nil
	}
}
