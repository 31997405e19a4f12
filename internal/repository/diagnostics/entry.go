package diagnostics

import (
	"errors"

	"github.com/oshokin/bell-scheduler/internal/domain/bell"
)

// EntryFor classifies err into a journal entry.
// Parse errors keep the raw line and the reason; everything else is an IO entry.
func EntryFor(source string, line int, err error) Entry {
	var parseErr *bell.ParseError
	if errors.As(err, &parseErr) {
		return Entry{
			Source:   source,
			Category: CategoryParse,
			Line:     line,
			Raw:      parseErr.Line,
			Reason:   parseErr.Reason,
		}
	}

	return Entry{
		Source:   source,
		Category: CategoryIO,
		Line:     line,
		Reason:   err.Error(),
	}
}
