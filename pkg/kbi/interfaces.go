package kbi

import (
	"github.com/scrypster/kbbridge/internal/knowledge"
	"github.com/scrypster/kbbridge/internal/storage"
)

// KnowledgeService is the symbolic knowledge base a Client writes instances,
// facts and goals to. A negative acknowledgement of an update is reported as
// ErrUpdateRejected.
type KnowledgeService = knowledge.Service

// DocumentStore holds instance payloads keyed by name and payload type.
// QueryNamed returns nil, nil when nothing matches.
type DocumentStore = storage.DocumentStore
