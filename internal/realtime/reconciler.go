package realtime

import (
	"creator-crm/internal/domain"

	"github.com/rs/zerolog"
)

// Reconciler consumes change events from the backend's live channel and
// patches them into a caller-held PageStore. The subscription transport is
// external; the reconciler owns only the payload mapping (backend-native
// snake_case rows into domain records) and the merge.
type Reconciler struct {
	store  *PageStore
	logger zerolog.Logger
}

func NewReconciler(store *PageStore, logger zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

func (r *Reconciler) Store() *PageStore {
	return r.store
}

func (r *Reconciler) OnInsert(payload map[string]any) {
	creator := domain.MapCreator(payload)
	if creator.ID == "" {
		r.logger.Warn().Msg("insert event without id, dropping")
		return
	}
	r.store.insert(creator)
	r.logger.Debug().Str("creator_id", creator.ID).Msg("insert event reconciled")
}

func (r *Reconciler) OnUpdate(payload map[string]any) {
	creator := domain.MapCreator(payload)
	if creator.ID == "" {
		r.logger.Warn().Msg("update event without id, dropping")
		return
	}
	r.store.update(creator)
	r.logger.Debug().Str("creator_id", creator.ID).Msg("update event reconciled")
}

func (r *Reconciler) OnDelete(id string) {
	if id == "" {
		r.logger.Warn().Msg("delete event without id, dropping")
		return
	}
	r.store.remove(id)
	r.logger.Debug().Str("creator_id", id).Msg("delete event reconciled")
}
