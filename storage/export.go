package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spurchat/config"
	"spurchat/model"
)

// ConversationExport is the JSON document written by ExportJSON.
type ConversationExport struct {
	Conversation model.Conversation `json:"conversation"`
	Messages     []model.Message    `json:"messages"`
	ExportedAt   time.Time          `json:"exportedAt"`
}

// SanitizeFilename makes name safe to use as a file name component.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\n', '\r':
			return '-'
		}
		return r
	}, name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "conversation"
	}
	return name
}

// GenerateExportPath returns a timestamped default export location in the
// user's Downloads directory.
func GenerateExportPath(conversationID string) string {
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("spurchat-conversation-%s-%s.json", SanitizeFilename(conversationID), timestamp)
	return filepath.Join(config.GetDownloadsDir(), filename)
}

// ExportJSON writes a conversation and its turns to exportPath.
func ExportJSON(ctx context.Context, store ConversationStore, id, exportPath string) error {
	conv, err := store.GetConversation(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	msgs, err := store.GetMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	doc := ConversationExport{
		Conversation: *conv,
		Messages:     msgs,
		ExportedAt:   time.Now().UTC(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// 0700 directory, 0600 file: exports contain customer messages
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
