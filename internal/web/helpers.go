package web

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func utoa(value uint) string {
	return strconv.FormatUint(uint64(value), 10)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

func pageURL(base string, page, perPage int) string {
	if strings.Contains(base, "?") {
		return base + "&page=" + itoa(page) + "&per_page=" + itoa(perPage)
	}
	return base + "?page=" + itoa(page) + "&per_page=" + itoa(perPage)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04")
}

func relativeTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return humanize.Time(value)
}

// bootVersion versions assets that cannot be hashed from disk.
var bootVersion = func() string {
	sum := sha256.Sum256([]byte(time.Now().UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:6])
}()

var assetVersions sync.Map

// assetPath appends a content hash to /static/ paths so browsers refetch
// changed files. Hashes are computed once per path.
func assetPath(path string) string {
	if !strings.HasPrefix(path, "/static/") {
		return path
	}
	if version, ok := assetVersions.Load(path); ok {
		return appendAssetVersion(path, version.(string))
	}
	version := bootVersion
	if data, err := os.ReadFile(filepath.Join("static", strings.TrimPrefix(path, "/static/"))); err == nil {
		sum := sha256.Sum256(data)
		version = hex.EncodeToString(sum[:6])
	}
	assetVersions.Store(path, version)
	return appendAssetVersion(path, version)
}

func appendAssetVersion(path, version string) string {
	if version == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "v=" + version
}
