package repository

import "context"

// Repos bundles the per-entity repositories that participate in one
// transactional unit.
type Repos struct {
	Sessions SessionRepository
	Rooms    ChatRoomRepository
	Messages MessageRepository
	Payments PaymentRepository
}

// TxRunner executes fn within a single transaction so that writes
// spanning the session, room, message and ledger entities become
// visible together or not at all. A reader must never observe a
// session in ACCEPTED without its chat room and ledger entry.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}
