package repository

import "context"

// Tx exposes repositories bound to one unit of work.
type Tx interface {
	Users() UserRepository
	Listings() ListingRepository
}

// Store owns the database handle. Its own Users/Listings run outside any
// transaction and are meant for reads.
type Store interface {
	Tx
	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close()
}
