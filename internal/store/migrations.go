package store

// registryTable holds one row per chart table with the column order fixed
// when the table was created.
const registryTable = "chart_schemas"

const schema = `
-- Explicit registry of chart tables (<group>_<scope>)
CREATE TABLE IF NOT EXISTS chart_schemas (
    table_name  TEXT PRIMARY KEY,
    group_name  TEXT    NOT NULL,
    scope       TEXT    NOT NULL,
    columns     TEXT    NOT NULL, -- JSON array, table order, excludes time
    created_at  INTEGER NOT NULL
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_chart_schemas_scope ON chart_schemas(scope);
`
