// Package history pages through the food diary newest first.
//
// A Feed owns a paging engine over a diary.Store and republishes its results
// on a stream that survives re-initialization. State folds those results
// into the list a screen renders, and Threshold turns "the user scrolled far
// enough" into the next LoadNextPage call.
package history
