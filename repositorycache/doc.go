// Package repositorycache provides cached repository decorators for go-repository-bun.
//
// # Overview
//
// CachedRepository wraps a base repository.Repository[T] and keeps the
// results of a few read operations in a cache.Store under one namespace.
// Every other method delegates to the base repository, so the decorator is a
// drop-in replacement.
//
// # Basic Usage
//
//	base := repository.NewRepository[*model.Color](db, model.NewHandlers[*model.Color]("name"))
//	colors := repositorycache.New(base, store,
//		repositorycache.WithDependentNamespaces("product-colors"),
//	)
//
//	page, err := colors.ListPage(ctx, filter)
//	color, err := colors.GetByID(ctx, id)
//
// # Cached Operations
//
//   - GetByID and GetByIdentifier without criteria, keyed "<ns>:get:..."
//   - ListPage, keyed "<ns>:list:..." from the filter's cache parameters
//
// Criteria based reads (Get, List, Count) pass through because criteria are
// functions and cannot be encoded into a stable key.
//
// # Invalidation
//
// A successful non-transactional write removes every key matching "<ns>:*"
// and the same pattern for each dependent namespace. Failed writes leave the
// cache untouched. Extra namespaces for a single call can be attached to the
// context with WithInvalidation.
//
// # Transactions
//
// *Tx methods never touch the cache. Wrap transactional work in RunInTx,
// which invalidates after the transaction commits:
//
//	err := orders.RunInTx(ctx, db, func(ctx context.Context, tx bun.Tx) error {
//		_, err := orders.UpdateTx(ctx, tx, order)
//		return err
//	})
//
// Invalidating after the commit means a reader running concurrently with the
// write can not repopulate the cache with pre-write data that outlives the
// invalidation.
//
// # Error Handling
//
// Errors from the base repository are returned unchanged. Cache failures are
// logged by the store and never reach the caller.
package repositorycache
