package frontmatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/folio/internal/models"
)

// yamlDoc fixes the emitted key order for recognized fields; extra fields
// follow inline. Key names match what Parse recognizes.
type yamlDoc struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description,omitempty"`
	Date        string                 `yaml:"date,omitempty"`
	Image       string                 `yaml:"image,omitempty"`
	Categories  []string               `yaml:"categories,omitempty"`
	Tags        []string               `yaml:"tags,omitempty"`
	Menu        *yamlMenu              `yaml:"menu,omitempty"`
	ReadingTime bool                   `yaml:"readingTime,omitempty"`
	Comments    bool                   `yaml:"comments,omitempty"`
	Extra       map[string]interface{} `yaml:",inline"`
}

type yamlMenu struct {
	Main *yamlMenuEntry `yaml:"main,omitempty"`
}

type yamlMenuEntry struct {
	Weight int             `yaml:"weight,omitempty"`
	Params *yamlMenuParams `yaml:"params,omitempty"`
}

type yamlMenuParams struct {
	Icon string `yaml:"icon,omitempty"`
}

// MarshalFrontMatter serializes a front matter block to delimited YAML.
// Parse(MarshalFrontMatter(fm) + body) yields the same fields back,
// recognized and extra alike.
func MarshalFrontMatter(fm *models.FrontMatter) ([]byte, error) {
	doc := yamlDoc{
		Title:       fm.Title,
		Description: fm.Description,
		Date:        FormatDate(fm.Date),
		Image:       fm.Image,
		Categories:  fm.Categories,
		Tags:        fm.Tags,
		ReadingTime: fm.ReadingTime,
		Comments:    fm.Comments,
		Extra:       fm.Extra,
	}
	if fm.Menu != nil && fm.Menu.Main != nil {
		entry := &yamlMenuEntry{Weight: fm.Menu.Main.Weight}
		if fm.Menu.Main.Icon != "" {
			entry.Params = &yamlMenuParams{Icon: fm.Menu.Main.Icon}
		}
		doc.Menu = &yamlMenu{Main: entry}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

// MarshalUnit serializes a complete content file: front matter block plus
// body, separated by one blank line.
func MarshalUnit(unit *models.ContentUnit) ([]byte, error) {
	block, err := MarshalFrontMatter(&unit.FrontMatter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(block)
	if unit.Body != "" && !strings.HasPrefix(unit.Body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString(unit.Body)
	return buf.Bytes(), nil
}

// FormatDate renders a date the way front matter carries it: date-only when
// there is no clock component, RFC3339 otherwise. The zero time renders
// empty so the field is omitted.
func FormatDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	if date.Hour() == 0 && date.Minute() == 0 && date.Second() == 0 && date.Location() == time.UTC {
		return date.Format("2006-01-02")
	}
	return date.Format(time.RFC3339)
}
