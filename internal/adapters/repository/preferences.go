package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/lineup/internal/domain/types"
)

// Preference keys.
const (
	KeySheetURL  = "sheetUrl"
	KeyTeam1Name = "team1Name"
	KeyTeam2Name = "team2Name"
)

// Preferences reads and writes the console inputs through a Store.
type Preferences struct {
	store Store
}

// NewPreferences wraps store.
func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// Load returns the stored preferences. Missing keys come back empty.
func (p *Preferences) Load(ctx context.Context) (types.Preferences, error) {
	var out types.Preferences
	for key, dst := range map[string]*string{
		KeySheetURL:  &out.SheetURL,
		KeyTeam1Name: &out.Team1Name,
		KeyTeam2Name: &out.Team2Name,
	} {
		v, err := p.store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return types.Preferences{}, fmt.Errorf("load %s: %w", key, err)
		}
		*dst = v
	}
	return out, nil
}

// Save writes every field; an empty field deletes its key.
func (p *Preferences) Save(ctx context.Context, prefs types.Preferences) error {
	for key, v := range map[string]string{
		KeySheetURL:  prefs.SheetURL,
		KeyTeam1Name: prefs.Team1Name,
		KeyTeam2Name: prefs.Team2Name,
	} {
		if err := p.put(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

// SaveLocator records the roster locator after a successful connect.
func (p *Preferences) SaveLocator(ctx context.Context, locator string) error {
	return p.put(ctx, KeySheetURL, locator)
}

func (p *Preferences) put(ctx context.Context, key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	if value == "" {
		err = p.store.Delete(ctx, key)
	} else {
		err = p.store.Set(ctx, key, value)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
