// Package archive maintains the legacy JSON file of application records
// and renders CSV exports from it. The file is read, modified and written
// back as one list, guarded by a process-wide mutex.
package archive

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

// Record is one application entry as stored in the JSON file
type Record struct {
	ApplicantName string    `json:"applicant_name"`
	ApplicantID   string    `json:"applicant_id"`
	ApplyType     string    `json:"apply_type"`
	PlayerTag     string    `json:"spieler_tag"`
	Strategies    string    `json:"strategien"`
	TownhallLevel string    `json:"th_level"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason"`
	HandledBy     string    `json:"handled_by"`
	Date          time.Time `json:"date"`
}

// Archive is the JSON file of application records
type Archive struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Archive {
	return &Archive{path: path}
}

// Load reads all records. A missing file is an empty archive
func (a *Archive) Load() ([]Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load()
}

func (a *Archive) load() ([]Record, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not read %s", a.path)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not parse %s", a.path)
	}
	return records, nil
}

// Add appends one record via a whole-list read-modify-write
func (a *Archive) Add(record Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	records, err := a.load()
	if err != nil {
		return err
	}
	if record.Date.IsZero() {
		record.Date = time.Now().UTC()
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not encode %s", a.path)
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not write %s", a.path)
	}
	log.Info().Msgf("Application archived for %s", record.ApplicantName)
	return nil
}

// ExportCSV renders records as CSV, optionally filtered by status.
// An empty filter exports everything
func ExportCSV(records []Record, statusFilter string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write([]string{"Bewerber", "Typ", "Spieler-Tag", "Strategien", "TH-Level", "Status", "Grund", "Bearbeiter", "Datum"})
	for _, record := range records {
		if statusFilter != "" && record.Status != statusFilter {
			continue
		}
		writer.Write([]string{
			record.ApplicantName,
			record.ApplyType,
			record.PlayerTag,
			record.Strategies,
			record.TownhallLevel,
			record.Status,
			record.Reason,
			record.HandledBy,
			record.Date.Format("02.01.2006 15:04"),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not render CSV")
	}
	return buf.Bytes(), nil
}
