package usage

import (
	"context"
	"fmt"

	"github.com/benefitsys/rules-api/pkg/store"
)

// ProcessingIDLookup derives the canonical processing id for a legacy
// event. Implementations are chained; see lookup.go.
type ProcessingIDLookup interface {
	ProcessingID(ctx context.Context, event V1) (string, error)
}

// Migrate converts a legacy v1 event to the canonical v2 record: the
// processing id is derived, the arena timestamp is kept, and the v1-only
// fields (externalId, eventTimestamp) are dropped.
func Migrate(ctx context.Context, event V1, lookup ProcessingIDLookup) (store.UsedDetermination, error) {
	processingID, err := lookup.ProcessingID(ctx, event)
	if err != nil {
		return store.UsedDetermination{}, fmt.Errorf("deriving processing id for %s: %w", event.ID, err)
	}
	if processingID == "" {
		return store.UsedDetermination{}, fmt.Errorf("empty processing id for %s", event.ID)
	}

	return store.UsedDetermination{
		ID:             event.ID,
		ProcessingID:   processingID,
		ArenaTimestamp: event.ArenaTimestamp,
	}, nil
}
