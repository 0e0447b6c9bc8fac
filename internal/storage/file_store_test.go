package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveReturnsReference(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save(strings.NewReader("%PDF-1.4 fake"), CategoryPatientIDProof, "id-proof.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/files/patient-id-proof/"))
	assert.True(t, strings.HasSuffix(ref, "_id-proof.pdf"))

	path, err := store.Resolve(ref)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestSaveRejectsEmptyStream(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader(""), CategoryDoctorCert, "cert.pdf")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestSaveRejectsTraversalFilenames(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "  ", "../../etc/passwd", "a/../b.pdf", "dir/file.pdf", `dir\file.pdf`} {
		_, err := store.Save(strings.NewReader("data"), CategoryAdminCert, name)
		assert.ErrorIs(t, err, ErrInvalidFilename, "filename %q", name)
	}
}

func TestSaveRejectsUnknownCategory(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(strings.NewReader("data"), "secrets", "file.pdf")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func TestResolveRejectsMalformedReferences(t *testing.T) {
	store := newTestStore(t)

	for _, ref := range []string{
		"files/admin-cert/x.pdf",
		"/files/unknown/x.pdf",
		"/files/admin-cert/",
		"/files/admin-cert/../x.pdf",
		"/files/admin-cert/a/b.pdf",
	} {
		_, err := store.Resolve(ref)
		assert.ErrorIs(t, err, ErrInvalidFilename, "ref %q", ref)
	}
}
