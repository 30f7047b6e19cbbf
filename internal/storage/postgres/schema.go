package postgres

// Schema contains the SQL statements to create the document table.
// All statements are idempotent.
const Schema = `
-- Documents table: named, typed payloads kept alongside knowledge base instances
CREATE TABLE IF NOT EXISTS documents (
    seq BIGSERIAL PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    body JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_name_type ON documents(name, type);
`
