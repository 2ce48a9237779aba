package usage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/store"
)

// Handler consumes legacy used-determination events: parse v1, migrate to
// v2, insert idempotently. One bad message never halts the stream; the
// consumer loop logs the returned error and moves on.
type Handler struct {
	store  store.UsageStore
	lookup ProcessingIDLookup
}

func NewHandler(usageStore store.UsageStore, lookup ProcessingIDLookup) *Handler {
	return &Handler{store: usageStore, lookup: lookup}
}

func (h *Handler) Handle(ctx context.Context, _, value []byte) error {
	var event V1
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("parsing used-determination event: %w", err)
	}

	record, err := Migrate(ctx, event, h.lookup)
	if err != nil {
		return err
	}

	outcome, err := h.store.InsertUsedDetermination(ctx, record)
	if err != nil {
		return fmt.Errorf("storing used determination %s: %w", record.ID, err)
	}

	entry := logger.Log.WithFields(map[string]interface{}{
		"id":            record.ID,
		"processing_id": record.ProcessingID,
	})
	if outcome == store.AlreadyExists {
		entry.Debug("Used determination already stored, duplicate ignored")
	} else {
		entry.Info("Used determination stored")
	}
	return nil
}
