// Package repository holds the storage-level sentinel errors shared by all
// backends. Usecases translate these into their own domain sentinels.
package repository

import "errors"

// ErrNotFound is returned when a query matches no live record. Soft-deleted
// rows count as absent unless the query explicitly includes them.
var ErrNotFound = errors.New("repository: not found")
