package archive

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "applications.json"))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	records, err := testArchive(t).Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAddAndLoad(t *testing.T) {
	a := testArchive(t)

	require.NoError(t, a.Add(Record{
		ApplicantName: "Marko",
		ApplicantID:   "1001",
		ApplyType:     "Mitglieder-Bewerbung",
		PlayerTag:     "#LJC8V0GCJ",
		Status:        "Angenommen",
		HandledBy:     "Admin",
	}))
	require.NoError(t, a.Add(Record{
		ApplicantName: "Iva",
		ApplicantID:   "1002",
		ApplyType:     "Staff-Bewerbung",
		Status:        "Abgelehnt",
		Reason:        "Keine Erfahrung",
		HandledBy:     "Admin",
	}))

	records, err := a.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Marko", records[0].ApplicantName)
	assert.False(t, records[0].Date.IsZero())
	assert.Equal(t, "Abgelehnt", records[1].Status)
}

func TestExportCSV(t *testing.T) {
	date := time.Date(2025, 4, 12, 18, 30, 0, 0, time.UTC)
	records := []Record{
		{ApplicantName: "Marko", ApplyType: "Mitglieder-Bewerbung", PlayerTag: "#LJC8V0GCJ",
			Status: "Angenommen", HandledBy: "Admin", Date: date},
		{ApplicantName: "Iva", ApplyType: "Mitglieder-Bewerbung",
			Status: "Abgelehnt", Reason: "TH zu niedrig", HandledBy: "Admin", Date: date},
	}

	data, err := ExportCSV(records, "")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Bewerber,Typ,Spieler-Tag,Strategien,TH-Level,Status,Grund,Bearbeiter,Datum", lines[0])
	assert.Contains(t, lines[1], "12.04.2025 18:30")

	filtered, err := ExportCSV(records, "Angenommen")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(filtered)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Marko")
}
