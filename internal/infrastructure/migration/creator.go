package migration

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/storefront/backend/internal/infrastructure/fileprovider"
)

var upTemplate = template.Must(template.New("up").Parse(`-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`))

var downTemplate = template.Must(template.New("down").Parse(`-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}

`))

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Creator writes new migration pairs into a migrations directory
type Creator struct {
	files fileprovider.FileProvider
	dir   string
	now   func() time.Time
}

// NewCreator creates a Creator for the virtual directory dir, e.g. "~/migrations"
func NewCreator(files fileprovider.FileProvider, dir string) *Creator {
	return &Creator{files: files, dir: files.MapPath(dir), now: time.Now}
}

// Dir returns the physical migrations directory
func (c *Creator) Dir() string {
	return c.dir
}

// Create writes an empty up/down pair versioned by the current time
func (c *Creator) Create(name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := c.files.CreateDirectory(c.dir); err != nil {
		return nil, err
	}

	now := c.now()
	version := now.Format("20060102150405")
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      c.files.Combine(c.dir, version+"_"+base+".up.sql"),
		DownPath:    c.files.Combine(c.dir, version+"_"+base+".down.sql"),
	}

	if err := c.write(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := c.write(mf.DownPath, downTemplate, mf); err != nil {
		_ = c.files.DeleteFile(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

// List returns the migration base names in version order
func (c *Creator) List() ([]string, error) {
	if !c.files.DirectoryExists(c.dir) {
		return []string{}, nil
	}
	files, err := c.files.GetFiles(c.dir, "*.up.sql", true)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(c.files.GetFileName(f), ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}

func (c *Creator) write(path string, tmpl *template.Template, data *MigrationFile) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return c.files.WriteAllBytes(path, buf.Bytes())
}

// sanitizeName converts a migration name to a lower snake case file name
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}
