package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// ResultsStore appends settled rounds to data/round_results.json, the same
// flat-file audit trail the rest of the data dir uses.
type ResultsStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewResultsStore(dataDir string) *ResultsStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ResultsStore{dataDir: dataDir}
}

func (rs *ResultsStore) path() string {
	return filepath.Join(rs.dataDir, "round_results.json")
}

func (rs *ResultsStore) ensureDir() error {
	return os.MkdirAll(rs.dataDir, 0755)
}

// LogRound appends one settled round to the JSON array on disk.
func (rs *ResultsStore) LogRound(r *RoundResult) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := rs.ensureDir(); err != nil {
		return err
	}
	path := rs.path()
	var list []*RoundResult
	data, err := os.ReadFile(path)
	if err == nil {
		_ = json.Unmarshal(data, &list)
	}
	if list == nil {
		list = []*RoundResult{}
	}
	list = append(list, r)
	data, err = json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BySession returns the stored rounds for one session in file order.
func (rs *ResultsStore) BySession(sessionID string) ([]*RoundResult, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	data, err := os.ReadFile(rs.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var list []*RoundResult
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	var out []*RoundResult
	for _, r := range list {
		if r != nil && r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}
