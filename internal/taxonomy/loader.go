package taxonomy

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"internmatch/internal/errors"
)

// Load reads a taxonomy file. YAML is the default format; files ending in
// .json are decoded as JSON. Sections the file leaves out keep their
// built-in values.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "taxonomy file not found", err).
				WithContext("file", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read taxonomy file", err).
			WithContext("file", path)
	}

	t, err := Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr.WithContext("file", path)
		}
		return nil, err
	}
	if t.Name == "" {
		t.Name = filepath.Base(path)
	}
	return t, nil
}

// Parse decodes and compiles taxonomy data.
func Parse(data []byte, isJSON bool) (*Taxonomy, error) {
	var t Taxonomy
	var err error
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&t)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&t)
	}
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeTaxonomyLoadFailed, "failed to decode taxonomy", err)
	}

	fillFromDefaults(&t)

	if err := t.Compile(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeTaxonomyLoadFailed, "invalid taxonomy", err)
	}
	return &t, nil
}

func fillFromDefaults(t *Taxonomy) {
	def := Default()
	if len(t.Skills) == 0 {
		t.Skills = def.Skills
	}
	if len(t.EducationKeywords) == 0 {
		t.EducationKeywords = def.EducationKeywords
	}
	if len(t.Synonyms) == 0 {
		t.Synonyms = def.Synonyms
	}
	if len(t.Regions) == 0 {
		t.Regions = def.Regions
	}
	if len(t.Sectors) == 0 {
		t.Sectors = def.Sectors
	}
	if len(t.SectorAliases) == 0 {
		t.SectorAliases = def.SectorAliases
	}
	if t.DefaultSector == "" {
		t.DefaultSector = def.DefaultSector
	}
	if len(t.RemoteKeywords) == 0 {
		t.RemoteKeywords = def.RemoteKeywords
	}
	if len(t.NoPreferenceKeywords) == 0 {
		t.NoPreferenceKeywords = def.NoPreferenceKeywords
	}
	if len(t.RoleCategories) == 0 {
		t.RoleCategories = def.RoleCategories
	}
}
