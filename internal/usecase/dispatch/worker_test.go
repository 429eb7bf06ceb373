package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viralizamos/payment-service/internal/domain"
)

func TestSweepUndispatchedEnqueuesOrphanedApprovals(t *testing.T) {
	// Approved transaction with no queue item: the original handoff died
	// between the status update and the enqueue
	f := newDispatchFixture(t, "")

	f.uc.sweepUndispatched(context.Background())

	item, err := f.queueRepo.FindByTransactionID("tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.QueueStatusPending, item.Status)
}

func TestSweepUndispatchedLeavesExistingItemsAlone(t *testing.T) {
	f := newDispatchFixture(t, "")
	f.enqueue(t)

	f.uc.sweepUndispatched(context.Background())

	assert.Len(t, f.queueRepo.createdItems, 1)
}
