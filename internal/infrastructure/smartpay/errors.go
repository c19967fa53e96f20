package smartpayclient

import "errors"

var (
	// ErrNullHTTPClient ...
	ErrNullHTTPClient = errors.New("http client must not be null")
	// ErrNullReceiptFetcher ...
	ErrNullReceiptFetcher = errors.New("receipt fetcher must not be null")
	// ErrMissingProof ...
	ErrMissingProof = errors.New("missing proof")
)
