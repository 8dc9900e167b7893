// Package export serializes a conversation's full ledger to a durable
// JSON record and aggregates read-only diagnostics over it. Both are
// straight structural walks; no orchestration logic lives here.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agora/internal/domain"
)

// Record is the complete export of one conversation.
type Record struct {
	ConversationID  string        `json:"conversation_id"`
	ExportTimestamp time.Time     `json:"export_timestamp"`
	TotalTurns      int           `json:"total_turns"`
	NotationMode    string        `json:"notation_mode"`
	Turns           []domain.Turn `json:"turns"`
}

// Build assembles an export record from a ledger snapshot.
func Build(conversationID, notationMode string, turns []domain.Turn) *Record {
	return &Record{
		ConversationID:  conversationID,
		ExportTimestamp: time.Now().UTC(),
		TotalTurns:      len(turns),
		NotationMode:    notationMode,
		Turns:           turns,
	}
}

// WriteFile dumps the record as indented JSON into dir under a
// timestamped name and returns the written path.
func (r *Record) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("agora_conversation_%d.json", time.Now().UnixMilli()))
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
