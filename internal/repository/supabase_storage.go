package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docproc/internal/domain"
)

const clientStateTable = "client_state"

// SupabaseStateStore keeps client flags in the client_state table
// (client_id, key, value, updated_at) with a unique (client_id, key).
type SupabaseStateStore struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewSupabaseStateStore creates a new Supabase-backed client storage
func NewSupabaseStateStore(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseStateStore {
	return &SupabaseStateStore{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Get retrieves a flag for a client
func (r *SupabaseStateStore) Get(_ context.Context, clientID, key string) (string, error) {
	client := r.supabaseClient.DB()
	if client == nil {
		return "", fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(clientStateTable).
		Select("value", "", false).
		Eq("client_id", clientID).
		Eq("key", key).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to get client state: %w", err)
	}

	var rows []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return "", domain.ErrStorageKeyNotFound
	}
	return rows[0].Value, nil
}

// Set upserts a flag for a client
func (r *SupabaseStateStore) Set(_ context.Context, clientID, key, value string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"client_id":  clientID,
		"key":        key,
		"value":      value,
		"updated_at": time.Now().UTC(),
	}

	_, _, err := client.From(clientStateTable).
		Upsert(data, "client_id,key", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update client state: %w", err)
	}

	r.logger.Debug("Client state updated", "client_id", clientID, "key", key)
	return nil
}

// Delete removes a flag for a client
func (r *SupabaseStateStore) Delete(_ context.Context, clientID, key string) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	_, _, err := client.From(clientStateTable).
		Delete("", "").
		Eq("client_id", clientID).
		Eq("key", key).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete client state: %w", err)
	}

	r.logger.Debug("Client state deleted", "client_id", clientID, "key", key)
	return nil
}
