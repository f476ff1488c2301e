// Package storage keeps uploaded product images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// LocalImageStore writes files under Dir/products and hands back URLs under
// URLPrefix/products.
type LocalImageStore struct {
	Dir       string
	URLPrefix string
	now       func() time.Time
}

func NewLocalImageStore(dir string) *LocalImageStore {
	return &LocalImageStore{Dir: dir, URLPrefix: "/uploads", now: time.Now}
}

// SanitizeName replaces every character outside [a-zA-Z0-9._-] with '_'.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return unsafeName.ReplaceAllString(name, "_")
}

// Save copies r into a new file and returns its server-relative URL.
func (s *LocalImageStore) Save(name string, r io.Reader) (string, error) {
	dir := filepath.Join(s.Dir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	base := strconv.FormatInt(now().UnixNano(), 10) + "_" + SanitizeName(name)

	f, err := os.OpenFile(filepath.Join(dir, base), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		base = uuid.NewString()[:8] + "_" + base
		f, err = os.OpenFile(filepath.Join(dir, base), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return strings.TrimRight(s.URLPrefix, "/") + "/products/" + base, nil
}

// Remove deletes the file behind a URL returned by Save. Missing files and
// URLs outside the store are ignored.
func (s *LocalImageStore) Remove(url string) error {
	prefix := strings.TrimRight(s.URLPrefix, "/") + "/products/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := strings.TrimPrefix(url, prefix)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, "products", name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
