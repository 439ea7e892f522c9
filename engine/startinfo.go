package engine

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Mrl is a media resource locator: a local path or a URL.
type Mrl string

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tga":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

func (m Mrl) IsEmpty() bool {
	return m == ""
}

// Scheme is the lower-cased URL scheme, or "" for a plain path.
func (m Mrl) Scheme() string {
	s := string(m)
	i := strings.Index(s, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(s[:i])
}

func (m Mrl) IsLocalFile() bool {
	scheme := m.Scheme()
	return !m.IsEmpty() && (scheme == "" || scheme == "file")
}

// IsDisc reports an optical disc locator such as dvd:// or bd://.
func (m Mrl) IsDisc() bool {
	switch m.Scheme() {
	case "dvd", "dvdnav", "bd", "bluray", "cdda", "vcd":
		return true
	default:
		return false
	}
}

// Location is what the backend is asked to open.
func (m Mrl) Location() string {
	if m.Scheme() != "file" {
		return string(m)
	}
	if u, err := url.Parse(string(m)); err == nil {
		return u.Path
	}
	return strings.TrimPrefix(string(m), "file://")
}

// IsImage reports a local still image, judged by file extension.
func (m Mrl) IsImage() bool {
	if !m.IsLocalFile() {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(m.Location()))]
}

// DisplayName is the file name for local media and the full locator otherwise.
func (m Mrl) DisplayName() string {
	if m.IsLocalFile() {
		return filepath.Base(m.Location())
	}
	return string(m)
}

func (m Mrl) category() string {
	switch {
	case m.IsDisc():
		return "DVD"
	case m.IsLocalFile():
		return "File"
	default:
		return "URL"
	}
}

// mediaName formats "<category>: <title>", falling back to the display name.
func mediaName(m Mrl, title string) string {
	if m.IsEmpty() {
		return ""
	}
	if title == "" {
		title = m.DisplayName()
	}
	return m.category() + ": " + title
}

// StartInfo describes one load request.
type StartInfo struct {
	Locator Mrl
	// Resume is the offset to start at, in milliseconds.
	Resume int
	// Cache is the network cache size hint in KiB; 0 disables the cache.
	Cache int
}

func (s StartInfo) IsValid() bool {
	return !s.Locator.IsEmpty()
}
