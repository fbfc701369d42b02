package realtime

import (
	"testing"

	"creator-crm/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(NewPageStore(), zerolog.Nop())
}

func seedPage(store *PageStore, ids ...string) {
	creators := make([]domain.Creator, len(ids))
	for i, id := range ids {
		creators[i] = domain.Creator{ID: id, Name: "name-" + id}
	}
	token := store.Issue()
	store.Replace(token, domain.PageResult{Data: creators, Total: len(creators)})
}

func TestPageStore_StaleReplaceDiscarded(t *testing.T) {
	store := NewPageStore()

	first := store.Issue()
	second := store.Issue()

	// The newer request resolves first.
	ok := store.Replace(second, domain.PageResult{
		Data:  []domain.Creator{{ID: "new"}},
		Total: 1,
	})
	require.True(t, ok)

	// The stale response must not clobber it.
	ok = store.Replace(first, domain.PageResult{
		Data:  []domain.Creator{{ID: "old"}},
		Total: 99,
	})
	assert.False(t, ok)

	creators, total := store.Snapshot()
	require.Len(t, creators, 1)
	assert.Equal(t, "new", creators[0].ID)
	assert.Equal(t, 1, total)
}

func TestReconciler_InsertAndUpdateIdempotent(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store(), "a", "b")

	payload := map[string]any{"id": "c", "name": "Chandni", "city": "Jaipur"}
	r.OnInsert(payload)
	r.OnInsert(payload)

	creators, total := r.Store().Snapshot()
	assert.Len(t, creators, 3)
	assert.Equal(t, 3, total)

	update := map[string]any{"id": "c", "name": "Chandni K", "city": "Jaipur"}
	r.OnUpdate(update)
	r.OnUpdate(update)

	creators, total = r.Store().Snapshot()
	require.Len(t, creators, 3)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Chandni K", creators[2].Name)
}

func TestReconciler_DeleteWinsOverLateUpdate(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store(), "a", "b")

	r.OnDelete("b")
	creators, total := r.Store().Snapshot()
	assert.Len(t, creators, 1)
	assert.Equal(t, 1, total)

	// A late out-of-order update must not resurrect the record.
	r.OnUpdate(map[string]any{"id": "b", "name": "zombie"})
	r.OnInsert(map[string]any{"id": "b", "name": "zombie"})

	creators, total = r.Store().Snapshot()
	assert.Len(t, creators, 1)
	assert.Equal(t, 1, total)

	// Deleting twice is a no-op, not a double decrement.
	r.OnDelete("b")
	_, total = r.Store().Snapshot()
	assert.Equal(t, 1, total)
}

func TestReconciler_DropsOffPageUpdates(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store(), "a", "b")

	// An update for a record outside the held page must not grow the page
	// or the total: whether it matches the page's filters is unknown.
	r.OnUpdate(map[string]any{"id": "offpage", "name": "Elsewhere"})

	creators, total := r.Store().Snapshot()
	assert.Len(t, creators, 2)
	assert.Equal(t, 2, total)
}

func TestReconciler_ReplaceClearsTombstones(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store(), "a")

	r.OnDelete("a")

	// A fresh page fetch resets the merge state; the id is live again.
	seedPage(r.Store(), "a")
	r.OnUpdate(map[string]any{"id": "a", "name": "back"})

	creators, _ := r.Store().Snapshot()
	require.Len(t, creators, 1)
	assert.Equal(t, "back", creators[0].Name)
}

func TestReconciler_MapsSnakeCasePayloads(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store())

	r.OnInsert(map[string]any{
		"id":              "x",
		"name":            "Dev",
		"followers_tier":  "10K-50K",
		"engagement_rate": "4.5%",
	})

	creators, _ := r.Store().Snapshot()
	require.Len(t, creators, 1)
	assert.Equal(t, "10K-50K", creators[0].FollowersTier)
	require.NotNil(t, creators[0].EngagementRate)
	assert.Equal(t, 4.5, *creators[0].EngagementRate)
}

func TestReconciler_DropsPayloadWithoutID(t *testing.T) {
	r := newTestReconciler()
	seedPage(r.Store(), "a")

	r.OnInsert(map[string]any{"name": "no id"})
	r.OnDelete("")

	creators, total := r.Store().Snapshot()
	assert.Len(t, creators, 1)
	assert.Equal(t, 1, total)
}
