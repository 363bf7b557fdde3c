package port

import "context"

// DocumentLookupPort resolves the locally stored document attached to a raw record.
type DocumentLookupPort interface {
	// LatestDocumentPath returns "", false, nil when the record has no document.
	LatestDocumentPath(ctx context.Context, rawID int64) (string, bool, error)
}

// DocumentTextPort turns a stored binary document into plain text.
type DocumentTextPort interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
