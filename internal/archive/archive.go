// Package archive persists generated pedigree reports as JSON objects under
// reports/<individual-id>/<timestamp>.json in a blob store.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigreecore/internal/blob"
	"pedigreecore/internal/pedigree"
)

const (
	prefix      = "reports/"
	contentType = "application/json"
	// TimestampLayout sorts lexically in chronological order.
	TimestampLayout = "20060102T150405.000000000Z"
)

// ErrInvalidKey is returned for keys and IDs that cannot map to an archive path.
var ErrInvalidKey = errors.New("archive: invalid key")

// Entry describes one archived report.
type Entry struct {
	Key          string    `json:"key"`
	IndividualID string    `json:"individual_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Size         int64     `json:"size_bytes"`
	URL          string    `json:"url,omitempty"`
}

// Archive stores reports in a blob.Store.
type Archive struct {
	store blob.Store
}

// New wraps store.
func New(store blob.Store) *Archive {
	return &Archive{store: store}
}

// Driver reports the backing blob driver.
func (a *Archive) Driver() blob.Driver { return a.store.Driver() }

// Key returns the object key for a report of id generated at ts.
func Key(id string, ts time.Time) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	return prefix + id + "/" + ts.UTC().Format(TimestampLayout) + ".json", nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: individual id %q", ErrInvalidKey, id)
	}
	return nil
}

// Save writes report; a second report with the same individual and
// GeneratedAt fails with blob.ErrExists.
func (a *Archive) Save(ctx context.Context, report pedigree.Report) (Entry, error) {
	key, err := Key(report.Individual.ID, report.GeneratedAt)
	if err != nil {
		return Entry{}, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return Entry{}, fmt.Errorf("archive: encode report: %w", err)
	}
	info, err := a.store.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"individual-id": report.Individual.ID,
			"coi-status":    string(report.Inbreeding.Status),
		},
	})
	if err != nil {
		return Entry{}, fmt.Errorf("archive: store %s: %w", key, err)
	}
	return Entry{Key: key, IndividualID: report.Individual.ID, GeneratedAt: report.GeneratedAt.UTC(), Size: info.Size, URL: info.URL}, nil
}

// List returns the archived reports of id, oldest first.
func (a *Archive) List(ctx context.Context, id string) ([]Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	infos, err := a.store.List(ctx, prefix+id+"/")
	if err != nil {
		return nil, fmt.Errorf("archive: list %s: %w", id, err)
	}
	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entry, ok := parseKey(info.Key)
		if !ok {
			continue
		}
		entry.Size = info.Size
		entry.URL = info.URL
		entries = append(entries, entry)
	}
	return entries, nil
}

// Latest returns the newest archived report of id, or blob.ErrNotFound.
func (a *Archive) Latest(ctx context.Context, id string) (pedigree.Report, error) {
	entries, err := a.List(ctx, id)
	if err != nil {
		return pedigree.Report{}, err
	}
	if len(entries) == 0 {
		return pedigree.Report{}, fmt.Errorf("archive: no reports for %s: %w", id, blob.ErrNotFound)
	}
	return a.Load(ctx, entries[len(entries)-1].Key)
}

// Load decodes the report stored at key.
func (a *Archive) Load(ctx context.Context, key string) (pedigree.Report, error) {
	if _, ok := parseKey(key); !ok {
		return pedigree.Report{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return pedigree.Report{}, fmt.Errorf("archive: load %s: %w", key, err)
	}
	defer rc.Close()
	var report pedigree.Report
	if err := json.NewDecoder(rc).Decode(&report); err != nil {
		return pedigree.Report{}, fmt.Errorf("archive: decode %s: %w", key, err)
	}
	return report, nil
}

// Delete removes one archived report.
func (a *Archive) Delete(ctx context.Context, key string) (bool, error) {
	if _, ok := parseKey(key); !ok {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return a.store.Delete(ctx, key)
}

// URL returns a shareable link to an archived report where the backend
// supports one.
func (a *Archive) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := parseKey(key); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return a.store.PresignURL(ctx, key, blob.SignedURLOptions{Method: "GET", Expiry: expiry})
}

func parseKey(key string) (Entry, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok {
		return Entry{}, false
	}
	id, file, ok := strings.Cut(rest, "/")
	if !ok || checkID(id) != nil {
		return Entry{}, false
	}
	stamp, ok := strings.CutSuffix(file, ".json")
	if !ok {
		return Entry{}, false
	}
	ts, err := time.Parse(TimestampLayout, stamp)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Key: key, IndividualID: id, GeneratedAt: ts}, true
}
