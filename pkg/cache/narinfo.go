// pkg/cache/narinfo.go
package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// NARInfo is the metadata a binary cache serves for one store path
type NARInfo struct {
	StorePath   string
	URL         string
	Compression string
	FileHash    string // hash of the compressed archive, e.g. "sha256:<base32>"
	FileSize    int64
	NarHash     string
	NarSize     int64
	References  []string
	Deriver     string
	Signature   string
}

// parseNARInfo parses the key: value lines of a .narinfo document
func parseNARInfo(content string) (*NARInfo, error) {
	info := &NARInfo{}
	lines := strings.Split(content, "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "StorePath":
			info.StorePath = value
		case "URL":
			info.URL = value
		case "Compression":
			info.Compression = value
		case "FileHash":
			info.FileHash = value
		case "FileSize":
			size, _ := strconv.ParseInt(value, 10, 64)
			info.FileSize = size
		case "NarHash":
			info.NarHash = value
		case "NarSize":
			size, _ := strconv.ParseInt(value, 10, 64)
			info.NarSize = size
		case "References":
			if value != "" {
				info.References = strings.Fields(value)
			}
		case "Deriver":
			info.Deriver = value
		case "Sig":
			info.Signature = value
		}
	}

	if info.StorePath == "" {
		return nil, fmt.Errorf("missing StorePath in narinfo")
	}
	if info.URL == "" {
		return nil, fmt.Errorf("missing URL in narinfo")
	}

	return info, nil
}
