package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/folio/internal/models"
)

// Front matter is delimited by "---" (YAML) or "+++" (TOML) lines. The
// opening delimiter must be the first line of the file.
var (
	yamlDelim = []byte("---")
	tomlDelim = []byte("+++")
	utf8BOM   = []byte{0xef, 0xbb, 0xbf}
)

type blockFormat int

const (
	formatYAML blockFormat = iota
	formatTOML
)

// Parse splits raw file content into a metadata block and body and builds a
// content unit. The body is kept verbatim; no markdown interpretation happens
// here. kind decides which fields are required: posts need a title and a
// date, pages only a title. The unit's slug is left for the caller, which
// derives it from the file's location under the content root.
func Parse(path string, kind models.ContentKind, raw []byte) (*models.ContentUnit, error) {
	block, body, format, err := split(raw)
	if err != nil {
		return nil, &models.MalformedFrontMatterError{Path: path, Err: err}
	}

	fields := map[string]interface{}{}
	switch format {
	case formatYAML:
		if err := yaml.Unmarshal(block, &fields); err != nil {
			return nil, &models.MalformedFrontMatterError{Path: path, Err: err}
		}
	case formatTOML:
		if err := toml.Unmarshal(block, &fields); err != nil {
			return nil, &models.MalformedFrontMatterError{Path: path, Err: err}
		}
	}

	fm, err := coerce(fields)
	if err != nil {
		return nil, &models.MalformedFrontMatterError{Path: path, Err: err}
	}

	if strings.TrimSpace(fm.Title) == "" {
		return nil, &models.MissingFieldError{Path: path, Field: "title"}
	}
	if kind == models.KindPost && !fm.HasDate() {
		return nil, &models.MissingFieldError{Path: path, Field: "date"}
	}

	return &models.ContentUnit{
		Kind:        kind,
		SourcePath:  path,
		FrontMatter: *fm,
		Body:        string(body),
		Date:        fm.Date,
		ContentHash: models.HashContent(raw),
	}, nil
}

// split separates the delimited metadata block from the body. The closing
// delimiter must sit alone on its own line.
func split(raw []byte) ([]byte, []byte, blockFormat, error) {
	content := bytes.TrimPrefix(raw, utf8BOM)

	var delim []byte
	var format blockFormat
	switch {
	case bytes.HasPrefix(content, yamlDelim):
		delim, format = yamlDelim, formatYAML
	case bytes.HasPrefix(content, tomlDelim):
		delim, format = tomlDelim, formatTOML
	default:
		return nil, nil, 0, fmt.Errorf("missing front matter delimiter")
	}

	rest := content[len(delim):]
	switch {
	case len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n':
		rest = rest[2:]
	case len(rest) >= 1 && rest[0] == '\n':
		rest = rest[1:]
	default:
		// Something other than a line break follows the delimiter, e.g. "----"
		return nil, nil, 0, fmt.Errorf("missing front matter delimiter")
	}

	for i := 0; i <= len(rest); {
		lineEnd := bytes.IndexByte(rest[i:], '\n')
		var line []byte
		next := len(rest) + 1
		if lineEnd >= 0 {
			line = rest[i : i+lineEnd]
			next = i + lineEnd + 1
		} else {
			line = rest[i:]
		}
		if bytes.Equal(bytes.TrimRight(line, "\r"), delim) {
			block := rest[:i]
			if next > len(rest) {
				return block, nil, format, nil
			}
			return block, rest[next:], format, nil
		}
		i = next
	}

	return nil, nil, 0, fmt.Errorf("unterminated front matter block")
}

// coerce types the recognized keys and shunts everything else into Extra
// unchanged, so unknown fields survive a parse/marshal round trip.
func coerce(fields map[string]interface{}) (*models.FrontMatter, error) {
	fm := &models.FrontMatter{}
	for key, value := range fields {
		switch key {
		case "title":
			fm.Title = toString(value)
		case "description":
			fm.Description = toString(value)
		case "date":
			date, err := toDate(value)
			if err != nil {
				return nil, err
			}
			fm.Date = date
		case "image":
			fm.Image = toString(value)
		case "categories":
			fm.Categories = toStringSlice(value)
		case "tags":
			fm.Tags = toStringSlice(value)
		case "menu":
			menu, err := toMenu(value)
			if err != nil {
				return nil, err
			}
			fm.Menu = menu
		case "readingTime":
			fm.ReadingTime = toBool(value)
		case "comments":
			fm.Comments = toBool(value)
		default:
			if fm.Extra == nil {
				fm.Extra = map[string]interface{}{}
			}
			fm.Extra[key] = value
		}
	}
	return fm, nil
}

func toString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	default:
		return false
	}
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toStringSlice(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// toDate accepts the timestamp types the decoders produce plus date strings
// in the supported layouts. An empty or null value is treated as absent.
func toDate(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case toml.LocalDate:
		return v.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return v.AsTime(time.UTC), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return time.Time{}, nil
		}
		for _, layout := range models.DateLayouts {
			if date, err := time.Parse(layout, v); err == nil {
				return date, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	default:
		return time.Time{}, fmt.Errorf("invalid date value %v", value)
	}
}

// toMenu accepts the nested menu table or the bare "main" shorthand.
func toMenu(value interface{}) (*models.Menu, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "main" {
			return &models.Menu{Main: &models.MenuEntry{}}, nil
		}
		return nil, fmt.Errorf("unknown menu %q", v)
	case map[string]interface{}:
		menu := &models.Menu{}
		for name, raw := range v {
			if name != "main" {
				return nil, fmt.Errorf("unknown menu %q", name)
			}
			entry := &models.MenuEntry{}
			if m, ok := raw.(map[string]interface{}); ok {
				if weight, ok := m["weight"]; ok {
					entry.Weight = toInt(weight)
				}
				if params, ok := m["params"].(map[string]interface{}); ok {
					entry.Icon = toString(params["icon"])
				}
			}
			menu.Main = entry
		}
		return menu, nil
	default:
		return nil, fmt.Errorf("invalid menu value %v", value)
	}
}
