package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/supportdesk/ticketd/internal/domain/entities"
	"github.com/supportdesk/ticketd/internal/ports"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// FileTicketRepository keeps the ticket collection in a single JSON file.
// It holds no state between calls; every Load reads the file again.
type FileTicketRepository struct {
	path string
}

// NewFileTicketRepository creates a repository backed by the file at path
func NewFileTicketRepository(path string) ports.TicketRepository {
	return &FileTicketRepository{path: path}
}

func (r *FileTicketRepository) Load(ctx context.Context) (*entities.TicketCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entities.NewTicketCollection(), nil
		}
		return nil, fmt.Errorf("read tickets file: %w", err)
	}

	var collection entities.TicketCollection
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("parse tickets file: %w", err)
	}

	return &collection, nil
}

func (r *FileTicketRepository) Save(ctx context.Context, collection *entities.TicketCollection) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save tickets: %w", err)
	}

	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tickets: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), dirPerms); err != nil {
		return fmt.Errorf("create tickets directory: %w", err)
	}

	_, statErr := os.Stat(r.path)
	created := errors.Is(statErr, os.ErrNotExist)

	if err := atomic.WriteFile(r.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write tickets file: %w", err)
	}

	// atomic.WriteFile keeps the mode of a file it replaces, but a new
	// file gets the 0600 of its temp file.
	if created {
		if err := os.Chmod(r.path, filePerms); err != nil {
			return fmt.Errorf("set tickets file permissions: %w", err)
		}
	}

	return nil
}

func (r *FileTicketRepository) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Save creates it on first write.
			return nil
		}
		return fmt.Errorf("stat tickets directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tickets directory %s is not a directory", dir)
	}

	if info, err := os.Stat(r.path); err == nil && info.IsDir() {
		return fmt.Errorf("tickets path %s is a directory", r.path)
	}

	return nil
}

func (r *FileTicketRepository) Location() string {
	return r.path
}
