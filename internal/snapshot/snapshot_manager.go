package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// SnapshotInfo contains metadata about a stored snapshot file.
type SnapshotInfo struct {
	Filename   string
	SequenceID int64
	Size       int64
}

// SnapshotManager handles snapshot creation and loading on disk,
// gzip-compressed, with an atomic write pattern and a retention cap.
type SnapshotManager struct {
	dir              string
	retentionCount   int
	compressionLevel int
	mu               sync.Mutex
}

// NewSnapshotManager creates a new snapshot manager rooted at dir.
func NewSnapshotManager(dir string, retentionCount int) (*SnapshotManager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &SnapshotManager{
		dir:              dir,
		retentionCount:   retentionCount,
		compressionLevel: gzip.BestCompression,
	}, nil
}

// TakeSnapshot captures every stream's current PnlState and writes it
// to disk.
func (sm *SnapshotManager) TakeSnapshot(state *SystemState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	snap := state.ToSnapshot()

	filename := fmt.Sprintf("snapshot_%020d.snap.gz", snap.SequenceID)
	tmpPath := filepath.Join(sm.dir, filename+".tmp")
	finalPath := filepath.Join(sm.dir, filename)

	if err := sm.writeSnapshot(tmpPath, snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename snapshot: %w", err)
	}

	if err := sm.cleanupOldSnapshots(); err != nil {
		slog.Warn("snapshot cleanup failed", "error", err)
	}

	return nil
}

func (sm *SnapshotManager) writeSnapshot(path string, snap *Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gzWriter, err := gzip.NewWriterLevel(file, sm.compressionLevel)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(gzWriter).Encode(snap); err != nil {
		gzWriter.Close()
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return err
	}

	return file.Sync()
}

// LoadLatest loads the most recently taken snapshot.
func (sm *SnapshotManager) LoadLatest() (*Snapshot, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	snapshots, err := sm.listSnapshots()
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshots found")
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SequenceID > snapshots[j].SequenceID
	})

	return sm.loadSnapshot(snapshots[0].Filename)
}

// LoadBySequence loads the snapshot taken at a specific WAL sequence.
func (sm *SnapshotManager) LoadBySequence(sequenceID int64) (*Snapshot, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	snapshots, err := sm.listSnapshots()
	if err != nil {
		return nil, err
	}

	for _, info := range snapshots {
		if info.SequenceID == sequenceID {
			return sm.loadSnapshot(info.Filename)
		}
	}

	return nil, fmt.Errorf("snapshot with sequence %d not found", sequenceID)
}

func (sm *SnapshotManager) loadSnapshot(filename string) (*Snapshot, error) {
	path := filepath.Join(sm.dir, filename)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer gzReader.Close()

	var snap Snapshot
	if err := json.NewDecoder(gzReader).Decode(&snap); err != nil {
		return nil, err
	}

	if ok, err := VerifyChecksum(snap.States, snap.Checksum); err != nil || !ok {
		return nil, fmt.Errorf("snapshot %s failed checksum verification", filename)
	}

	return &snap, nil
}

// List returns metadata for every snapshot currently on disk.
func (sm *SnapshotManager) List() ([]SnapshotInfo, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.listSnapshots()
}

func (sm *SnapshotManager) listSnapshots() ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(sm.dir)
	if err != nil {
		return nil, err
	}

	var snapshots []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".snap.gz") {
			continue
		}

		var sequenceID int64
		if _, err := fmt.Sscanf(entry.Name(), "snapshot_%020d.snap.gz", &sequenceID); err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		snapshots = append(snapshots, SnapshotInfo{
			Filename:   entry.Name(),
			SequenceID: sequenceID,
			Size:       info.Size(),
		})
	}

	return snapshots, nil
}

func (sm *SnapshotManager) cleanupOldSnapshots() error {
	snapshots, err := sm.listSnapshots()
	if err != nil {
		return err
	}
	if len(snapshots) <= sm.retentionCount {
		return nil
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].SequenceID > snapshots[j].SequenceID
	})

	for i := sm.retentionCount; i < len(snapshots); i++ {
		path := filepath.Join(sm.dir, snapshots[i].Filename)
		if err := os.Remove(path); err != nil {
			return err
		}
	}

	return nil
}

// TakeSnapshotPeriodic runs TakeSnapshot on a fixed interval until done
// is closed.
func (sm *SnapshotManager) TakeSnapshotPeriodic(state *SystemState, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sm.TakeSnapshot(state); err != nil {
				slog.Error("periodic snapshot failed", "error", err)
			} else {
				slog.Info("snapshot taken", "sequence_id", state.LastEventID)
			}
		case <-done:
			return
		}
	}
}
