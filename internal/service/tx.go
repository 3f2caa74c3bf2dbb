package service

import (
	"context"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"

	"gorm.io/gorm"
)

type commitHooksKey struct{}

type commitHooks struct {
	fns []func()
}

// runTx executes fn inside a GORM transaction: commit on nil, rollback on
// error or panic. Untyped failures (including commit errors) surface as
// PERSISTENCE_ERROR. With a nil db, fn runs with a nil tx.
//
// Work queued with afterCommit runs only once the transaction committed.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	hooks := &commitHooks{}
	txCtx := context.WithValue(ctx, commitHooksKey{}, hooks)
	if err := db.WithContext(txCtx).Transaction(fn); err != nil {
		return apierror.FromStore(err, "", "record not found")
	}
	for _, f := range hooks.fns {
		f()
	}
	return nil
}

// afterCommit defers f until the runTx transaction owning tx commits. A
// rollback drops it. Outside runTx, f runs immediately.
func afterCommit(tx *gorm.DB, f func()) {
	if tx != nil && tx.Statement != nil && tx.Statement.Context != nil {
		if hooks, ok := tx.Statement.Context.Value(commitHooksKey{}).(*commitHooks); ok {
			hooks.fns = append(hooks.fns, f)
			return
		}
	}
	f()
}

func actorPtr(actor string) *string {
	if actor == "" {
		return nil
	}
	return &actor
}
