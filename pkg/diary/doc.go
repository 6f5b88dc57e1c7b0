// Package diary defines the food entry model and the storage contract that
// the history feed pages over.
//
// Implementations of Store live in internal/persistence and are exposed via
// constructors in the root pager package.
package diary
