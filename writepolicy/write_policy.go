package writepolicy

import (
	"context"

	"github.com/krisalay/boundcache/types"
)

/*
This file defines what a "write policy" is.

After every mutation that has to be persisted, the cache copies its
table into a snapshot while it still holds the lock, releases the lock,
and only then hands the snapshot to its write policy. How and when that
snapshot reaches the persistence gateway is the policy's business:
- Write-through saves it before OnWrite returns
- Write-back queues it for a background worker

Either way the gateway ends up holding the newest snapshot, even when
two mutations hand theirs over in the opposite order.
*/

/*
WritePolicy is the contract that all write policies must follow.
The cache does not care which policy is used. It simply calls these methods.
*/
type WritePolicy[V any] interface {

	/*
		OnWrite is called with a full snapshot of the cache after a
		mutation. The snapshot belongs to the policy from then on.

		generation is taken under the same lock as the snapshot and grows
		with every snapshot. Calls may arrive out of order; a snapshot
		older than one the policy already accepted is dropped.
	*/
	OnWrite(ctx context.Context, generation uint64, snapshot []types.Entry[V])

	/*
		Close is called when the cache is shutting down.
	*/
	Close()
}
