// Package audit keeps a compressed on-disk trail of guard rejections so
// moderation decisions can be reviewed after the fact. Recording is
// best-effort and never affects a verdict.
package audit

import (
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/models"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/providers"
	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

// maxEvents bounds the archive; older events roll off on flush.
const maxEvents = 10000

// Event is one rejected submission. ScopeKey is the pseudonymous rate
// key involved, never raw identity.
type Event struct {
	Action   string        `json:"action"`
	Reason   models.Reason `json:"reason"`
	ScopeKey string        `json:"scope_key"`
	At       time.Time     `json:"at"`
}

type archiveFile struct {
	Events []Event `json:"events"`
}

type ArchiveInterface interface {
	Record(action string, reason models.Reason, scopeKey string)
	Flush() error
	Restore() error
	Close()
}

type Archive struct {
	mu         sync.Mutex
	path       string
	events     []Event
	compressor CompressorInterface
	logger     providers.Logger
}

// NewArchive returns a file-backed archive, or a noop one when auditing
// is disabled.
func NewArchive(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) ArchiveInterface {
	if !conf.Audit.Enabled {
		logger.Infof(providers.TypeApp, "Audit archive disabled")
		return &noopArchive{}
	}
	return &Archive{
		path:       conf.Audit.FilePath,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archive) Record(action string, reason models.Reason, scopeKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, Event{
		Action:   action,
		Reason:   reason,
		ScopeKey: scopeKey,
		At:       time.Now(),
	})
	if len(a.events) > maxEvents {
		a.events = a.events[len(a.events)-maxEvents:]
	}
}

// Flush writes the full event list to disk, compressed, via tmp+rename
// so a crash mid-write never corrupts the archive.
func (a *Archive) Flush() error {
	a.mu.Lock()
	snapshot := archiveFile{Events: append([]Event(nil), a.events...)}
	a.mu.Unlock()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := a.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, a.path)
}

// Restore loads the archive from disk. A missing file is a fresh start,
// not an error.
func (a *Archive) Restore() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := a.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var stored archiveFile
	if err := json.Unmarshal(decompressed, &stored); err != nil {
		return err
	}

	a.mu.Lock()
	a.events = append(stored.Events, a.events...)
	a.mu.Unlock()
	return nil
}

func (a *Archive) Close() {
	a.compressor.Close()
}

type noopArchive struct{}

func (n *noopArchive) Record(_ string, _ models.Reason, _ string) {}
func (n *noopArchive) Flush() error                               { return nil }
func (n *noopArchive) Restore() error                             { return nil }
func (n *noopArchive) Close()                                     {}
