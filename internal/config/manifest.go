package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest lists the input files for one ingest run. Webinar id and date
// are optional per file; when omitted they are derived from the export
// filename convention (attendee_<id>_YYYY_MM_DD).
type Manifest struct {
	CRMExport  string         `yaml:"crm_export"`
	Attendance []ManifestFile `yaml:"attendance"`
}

// ManifestFile is one attendance export entry.
type ManifestFile struct {
	Path        string `yaml:"path"`
	WebinarID   string `yaml:"webinar_id,omitempty"`
	WebinarDate string `yaml:"webinar_date,omitempty"`
}

// LoadManifest reads and validates a YAML run manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if m.CRMExport == "" {
		return nil, fmt.Errorf("manifest: crm_export is required")
	}
	if len(m.Attendance) == 0 {
		return nil, fmt.Errorf("manifest: at least one attendance file is required")
	}
	for i, f := range m.Attendance {
		if f.Path == "" {
			return nil, fmt.Errorf("manifest: attendance[%d]: path is required", i)
		}
	}

	return &m, nil
}
