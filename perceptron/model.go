package perceptron

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
)

// Snapshot is the serialized form of a Store. Averaged-weight queries depend
// on the exact global time and per-cell timestamps, so every field is
// persisted and restored verbatim.
type Snapshot struct {
	ID         string       `json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	NumClasses int          `json:"num_classes"`
	GlobalTime uint64       `json:"global_time"`

	// Conjunctions records whether the model was trained on conjunction-
	// expanded feature vectors, so inference expands the same way.
	Conjunctions bool `json:"conjunctions,omitempty"`

	Cells []CellRecord `json:"cells"`
}

// CellRecord is one persisted weight cell.
type CellRecord struct {
	FeatureID  uint64  `json:"feature_id"`
	Class      Class   `json:"class"`
	Current    float64 `json:"current"`
	Total      float64 `json:"total"`
	LastUpdate uint64  `json:"last_update_time"`
}

func cellRecordLess(a, b CellRecord) bool {
	if a.FeatureID != b.FeatureID {
		return a.FeatureID < b.FeatureID
	}
	return a.Class < b.Class
}

// Snapshot captures the store's state. Cells whose weight and total are both
// zero are omitted; everything else is exported in (feature id, class) order
// so snapshots of equal stores are byte-identical.
func (s *Store) Snapshot() *Snapshot {
	tree := btree.NewG(2, cellRecordLess)
	for key, h := range s.cells {
		c := s.arena.at(h)
		if c.current == 0 && c.total == 0 {
			continue
		}
		tree.ReplaceOrInsert(CellRecord{
			FeatureID:  key.fid,
			Class:      key.class,
			Current:    c.current,
			Total:      c.total,
			LastUpdate: c.last,
		})
	}
	cells := make([]CellRecord, 0, tree.Len())
	tree.Ascend(func(rec CellRecord) bool {
		cells = append(cells, rec)
		return true
	})
	return &Snapshot{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		NumClasses: s.numClasses,
		GlobalTime: s.time,
		Cells:      cells,
	}
}

// RestoreStore rebuilds a Store from a snapshot.
func RestoreStore(snap *Snapshot) (*Store, error) {
	if snap.NumClasses <= 0 {
		return nil, fmt.Errorf("snapshot has %d classes", snap.NumClasses)
	}
	s := NewStore(snap.NumClasses)
	s.time = snap.GlobalTime
	for _, rec := range snap.Cells {
		if rec.Class < 0 || int(rec.Class) >= snap.NumClasses {
			return nil, fmt.Errorf("cell (feature %d, class %d): %w", rec.FeatureID, rec.Class, ErrClassRange)
		}
		if rec.LastUpdate > snap.GlobalTime {
			return nil, fmt.Errorf("cell (feature %d, class %d): last update %d after global time %d",
				rec.FeatureID, rec.Class, rec.LastUpdate, snap.GlobalTime)
		}
		h, err := s.arena.alloc()
		if err != nil {
			return nil, err
		}
		c := s.arena.at(h)
		c.current = rec.Current
		c.total = rec.Total
		c.last = rec.LastUpdate
		s.cells[cellKey{rec.FeatureID, rec.Class}] = h
	}
	return s, nil
}

// FinalizeAveraged returns a fresh store whose current weights are this
// store's averaged weights. The result carries no history and is meant for
// inference-only deployment; training it further restarts the averaging
// clock.
func (s *Store) FinalizeAveraged() (*Store, error) {
	out := NewStore(s.numClasses)
	for key := range s.cells {
		avg := s.GetAveraged(key.fid, key.class)
		if avg == 0 {
			continue
		}
		if err := out.UpdateWeight(key.fid, key.class, avg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SaveModel serializes the snapshot to a JSON file.
func SaveModel(snap *Snapshot, path string) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel deserializes a snapshot from a JSON file.
func LoadModel(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalModel(data)
}

// MarshalModel serializes the snapshot to JSON bytes.
func MarshalModel(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalModel deserializes a snapshot from JSON bytes.
func UnmarshalModel(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
