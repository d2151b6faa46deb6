// Package models holds the shared data types of the bridge: runner model
// descriptions and chat turns.
package models

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ModelInfo describes one model known to the runner.
type ModelInfo struct {
	Name       string
	Size       int64
	Path       string
	ModifiedAt string
	Format     string
}

// ParseModelList extracts model entries from the runner's `list` output.
//
// The runner prints either a "No models found." notice or a header line
// followed by one entry per line:
//
//	Available models:
//	  - tinyllama (4368439584 bytes)
func ParseModelList(output string) []ModelInfo {
	var infos []ModelInfo
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		entry := strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if entry == "" {
			continue
		}

		info := ModelInfo{Name: entry}
		if open := strings.LastIndex(entry, " ("); open >= 0 && strings.HasSuffix(entry, ")") {
			info.Name = entry[:open]
			size := strings.TrimSuffix(entry[open+2:], ")")
			size = strings.TrimSuffix(size, " bytes")
			if n, err := strconv.ParseInt(size, 10, 64); err == nil {
				info.Size = n
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// ModelInfoFromJSON parses the runner's `show` output, a single JSON object
// with name/size/path/modified_at/format fields.
func ModelInfoFromJSON(data string) (ModelInfo, bool) {
	if !gjson.Valid(data) {
		return ModelInfo{}, false
	}
	doc := gjson.Parse(data)
	name := doc.Get("name")
	if !name.Exists() {
		return ModelInfo{}, false
	}
	return ModelInfo{
		Name:       name.String(),
		Size:       doc.Get("size").Int(),
		Path:       doc.Get("path").String(),
		ModifiedAt: doc.Get("modified_at").String(),
		Format:     doc.Get("format").String(),
	}, true
}

// HumanSize renders m's byte count the way the rest of the UI shows it.
func (m ModelInfo) HumanSize() string {
	return HumanSize(m.Size)
}

// HumanSize renders a byte count in binary units.
func HumanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return strconv.FormatInt(size, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(size) / float64(div)
	return strconv.FormatFloat(value, 'f', 1, 64) + " " + []string{"KiB", "MiB", "GiB", "TiB"}[exp]
}
