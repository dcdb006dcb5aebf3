package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Project is a logical workspace owning uploaded assets and their chunks.
// The external ProjectID maps to exactly one row; rows are created lazily
// on first use and never duplicated.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ProjectID string    `bun:"project_id,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Asset is one uploaded file, immutable after creation.
type Asset struct {
	bun.BaseModel `bun:"table:assets,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ProjectID int64     `bun:"project_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Size      int64     `bun:"size,notnull"`
	Type      string    `bun:"type,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Chunk is one retrievable passage of an asset. Chunks are written in
// batches during ingestion and never mutated.
type Chunk struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         int64          `bun:"id,pk,autoincrement"`
	ProjectID  int64          `bun:"project_id,notnull"`
	AssetID    int64          `bun:"asset_id,notnull"`
	Text       string         `bun:"text,notnull"`
	Metadata   map[string]any `bun:"metadata,type:jsonb"`
	OrderIndex int            `bun:"order_index,notnull"`
}

// ConversationMessage is one replayed turn of an external conversation.
// Roles other than "assistant" and "system" are treated as user turns.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
