package samples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	rep, err := Write(dir)
	require.NoError(t, err)
	require.Len(t, rep.Files, 3)
	assert.Equal(t, filepath.Join(dir, "kapha_imbalance.txt"), rep.Files[0])
	assert.Positive(t, rep.TotalChars)

	b, err := os.ReadFile(filepath.Join(dir, "vata_imbalance.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Ashwagandha")
}

func TestTestCases(t *testing.T) {
	cases := TestCases()
	require.Len(t, cases, 3)
	var doshas []string
	for _, c := range cases {
		assert.NotEmpty(t, c.Symptoms)
		doshas = append(doshas, c.ExpectedDosha)
	}
	assert.Equal(t, []string{"Vata", "Pitta", "Kapha"}, doshas)
}
