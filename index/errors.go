package index

import "github.com/cockroachdb/errors"

var (
	// ErrBadIndexInfo is returned by OpenOrCreate when a reopened file's
	// meta page does not match the relation name, attribute offset, or
	// attribute type supplied by the caller, or when creating a new index
	// with an attribute type other than Integer, which is the only one
	// actually implemented.
	ErrBadIndexInfo = errors.New("index: meta page does not match supplied index info")

	// ErrBadOpcodes is returned by StartScan when lowOp is not one of
	// {GT, GTE} or highOp is not one of {LT, LTE}.
	ErrBadOpcodes = errors.New("index: invalid scan operator")

	// ErrBadScanRange is returned by StartScan when lowVal > highVal.
	ErrBadScanRange = errors.New("index: low bound exceeds high bound")

	// ErrNoSuchKeyFound is returned by StartScan when no key in the tree
	// satisfies the requested predicate.
	ErrNoSuchKeyFound = errors.New("index: no key satisfies the scan predicate")

	// ErrScanNotInitialized is returned by ScanNext or EndScan when the
	// cursor is Idle.
	ErrScanNotInitialized = errors.New("index: no scan in progress")

	// ErrIndexScanCompleted is returned by ScanNext once the cursor is
	// exhausted.
	ErrIndexScanCompleted = errors.New("index: scan already exhausted")

	// ErrRelationNameTooLong is returned by OpenOrCreate when relationName
	// exceeds the 20-byte meta page field: reject outright rather than
	// silently truncate, since a truncated name could collide with a
	// different relation's index on reopen.
	ErrRelationNameTooLong = errors.New("index: relation name longer than 20 bytes")
)
