package services_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"ewarranty/internal/config"
	"ewarranty/internal/repos"
	"ewarranty/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(context.Background(), config.Test())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// memStore keeps "uploaded" files in a map.
type memStore struct {
	files map[string]string
	n     int
}

func newMemStore() *memStore { return &memStore{files: map[string]string{}} }

func (m *memStore) Save(name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.n++
	u := fmt.Sprintf("/uploads/products/%d_%s", m.n, name)
	m.files[u] = string(b)
	return u, nil
}

func (m *memStore) Remove(url string) error {
	delete(m.files, url)
	return nil
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func intp(n int) *int       { return &n }
func idp(n int64) *int64    { return &n }
func strp(s string) *string { return &s }

func seedProduct(t *testing.T, svc *services.ProductService, name string, serials ...string) int64 {
	t.Helper()
	p, err := svc.Create(context.Background(), services.CreateProductRequest{Name: name, Serials: serials})
	require.NoError(t, err)
	return p.ID
}
