package contacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Resolve(t *testing.T) {
	d := NewDirectory(map[string]string{"Bob": "bob@corp.io"})

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"builtin contact", "sallu", "salauddin0758@gmail.com", true},
		{"case insensitive", "SALLU", "salauddin0758@gmail.com", true},
		{"extra contact", "bob", "bob@corp.io", true},
		{"literal address passes through", "Someone@Somewhere", "Someone@Somewhere", true},
		{"unknown name", "carol", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Resolve(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectory_ReplaceKeepsBuiltins(t *testing.T) {
	d := NewDirectory(map[string]string{"bob": "bob@corp.io"})
	d.Replace(map[string]string{"carol": "carol@corp.io", "sallu": "new-sallu@corp.io"})

	_, ok := d.Resolve("bob")
	assert.False(t, ok)

	addr, ok := d.Resolve("sallu")
	require.True(t, ok)
	assert.Equal(t, "new-sallu@corp.io", addr)

	addr, ok = d.Resolve("salah")
	require.True(t, ok)
	assert.Equal(t, "salahuddin0758@gmail.com", addr)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  Dana: dana@corp.io\n"), 0o600))

	d, err := Open(path)
	require.NoError(t, err)
	addr, ok := d.Resolve("dana")
	require.True(t, ok)
	assert.Equal(t, "dana@corp.io", addr)

	_, err = Open(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	d, err = Open("")
	require.NoError(t, err)
	assert.Equal(t, len(builtin), d.Len())
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts: [unterminated"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing contacts")
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  eve: eve@corp.io\n"), 0o600))

	d, err := Open(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, d, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  frank: frank@corp.io\n"), 0o600))

	assert.Eventually(t, func() bool {
		_, ok := d.Resolve("frank")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
}
