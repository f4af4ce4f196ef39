package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mwantia/dungeonrun/internal/runs"
	"github.com/mwantia/dungeonrun/pkg/db/store"
	"github.com/mwantia/dungeonrun/pkg/log"
)

const (
	KeyCharacters = "dungeonCharacters"
	KeySelected   = "selectedCharacter"
	KeyRuns       = "dungeonRuns"
	KeyDeleted    = "lastDeletedRun"
)

// DefaultCharacter is used when no character list has been stored yet.
const DefaultCharacter = "Main"

// Adapter maps the tracker state onto named blobs of a KeyValueStore. Blobs
// that are missing or cannot be decoded load as their default; only errors of
// the store itself are returned.
type Adapter struct {
	store store.KeyValueStore
	log   log.LoggerService
}

func NewAdapter(s store.KeyValueStore, logger log.LoggerService) *Adapter {
	return &Adapter{
		store: s,
		log:   logger,
	}
}

func (a *Adapter) LoadCharacters(ctx context.Context) ([]string, error) {
	characters, found, err := loadJSON[[]string](ctx, a, KeyCharacters)
	if err != nil {
		return nil, err
	}
	if !found || len(characters) == 0 {
		return []string{DefaultCharacter}, nil
	}
	return characters, nil
}

// LoadSelected returns the stored selection. It falls back to the first
// character when nothing is stored or the stored name is not acceptable.
func (a *Adapter) LoadSelected(ctx context.Context, characters []string, accept func(string) bool) (string, error) {
	fallback := ""
	if len(characters) > 0 {
		fallback = characters[0]
	}

	value, err := a.store.Get(ctx, KeySelected)
	if errors.Is(err, store.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load '%s': %w", KeySelected, err)
	}

	if value == "" || (accept != nil && !accept(value)) {
		a.log.Warn("Stored selection '%s' is not a known character, using '%s'", value, fallback)
		return fallback, nil
	}
	return value, nil
}

func (a *Adapter) LoadRuns(ctx context.Context) ([]runs.Run, error) {
	loaded, _, err := loadJSON[[]runs.Run](ctx, a, KeyRuns)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = []runs.Run{}
	}
	return loaded, nil
}

func (a *Adapter) LoadDeleted(ctx context.Context) (*runs.Run, error) {
	deleted, _, err := loadJSON[*runs.Run](ctx, a, KeyDeleted)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (a *Adapter) SaveCharacters(ctx context.Context, characters []string) error {
	return a.saveJSON(ctx, KeyCharacters, characters)
}

func (a *Adapter) SaveSelected(ctx context.Context, selected string) error {
	if err := a.store.Put(ctx, KeySelected, selected); err != nil {
		return fmt.Errorf("failed to save '%s': %w", KeySelected, err)
	}
	return nil
}

func (a *Adapter) SaveRuns(ctx context.Context, rs []runs.Run) error {
	if rs == nil {
		rs = []runs.Run{}
	}
	return a.saveJSON(ctx, KeyRuns, rs)
}

// SaveDeleted stores the undo slot. A nil run clears it.
func (a *Adapter) SaveDeleted(ctx context.Context, run *runs.Run) error {
	if run == nil {
		if err := a.store.Delete(ctx, KeyDeleted); err != nil {
			return fmt.Errorf("failed to clear '%s': %w", KeyDeleted, err)
		}
		return nil
	}
	return a.saveJSON(ctx, KeyDeleted, run)
}

// SaveRunsAndDeleted stores the run list together with the undo slot in one
// write, so a deletion is never persisted without its undo entry.
func (a *Adapter) SaveRunsAndDeleted(ctx context.Context, rs []runs.Run, deleted *runs.Run) error {
	if rs == nil {
		rs = []runs.Run{}
	}
	data, err := encodeJSON(KeyRuns, rs)
	if err != nil {
		return err
	}

	changes := []store.Change{{Key: KeyRuns, Value: data}}
	if deleted == nil {
		changes = append(changes, store.Change{Key: KeyDeleted, Delete: true})
	} else {
		staged, err := encodeJSON(KeyDeleted, deleted)
		if err != nil {
			return err
		}
		changes = append(changes, store.Change{Key: KeyDeleted, Value: staged})
	}

	if err := a.store.Batch(ctx, changes...); err != nil {
		return fmt.Errorf("failed to save '%s' and '%s': %w", KeyRuns, KeyDeleted, err)
	}

	a.log.Debug("Saved '%s' and '%s'", KeyRuns, KeyDeleted)
	return nil
}

// loadJSON decodes the blob stored under key. A missing or undecodable blob
// yields the zero value and found is false.
func loadJSON[T any](ctx context.Context, a *Adapter, key string) (T, bool, error) {
	var zero T

	value, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to load '%s': %w", key, err)
	}

	var decoded T
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		a.log.Warn("Unable to decode '%s', falling back to default: %v", key, err)
		return zero, false, nil
	}

	a.log.Debug("Loaded '%s' (%d bytes)", key, len(value))
	return decoded, true, nil
}

func encodeJSON(key string, value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to encode '%s': %w", key, err)
	}
	return string(data), nil
}

func (a *Adapter) saveJSON(ctx context.Context, key string, value any) error {
	data, err := encodeJSON(key, value)
	if err != nil {
		return err
	}

	if err := a.store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save '%s': %w", key, err)
	}

	a.log.Debug("Saved '%s' (%d bytes)", key, len(data))
	return nil
}
