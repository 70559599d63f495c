// Package i18n translates the Chinese labels on the upstream stats page into
// canonical English names. The mapping tables are static data embedded at
// build time; translation happens in the fetcher, never in the analysis.
package i18n

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/riftlab/riftrank/internal/model"
)

//go:embed mappings.yaml
var mappingsYAML []byte

type mappings struct {
	Brackets  map[string]string `yaml:"brackets"`
	Lanes     map[string]string `yaml:"lanes"`
	Headers   map[string]string `yaml:"headers"`
	Champions map[string]string `yaml:"champions"`
}

// Translator resolves Chinese source labels to canonical names. It is
// immutable after Load and safe for concurrent use.
type Translator struct {
	m mappings
}

// Load parses the embedded mapping tables.
func Load() (*Translator, error) {
	var m mappings
	if err := yaml.Unmarshal(mappingsYAML, &m); err != nil {
		return nil, eris.Wrap(err, "i18n: parse mappings")
	}
	return &Translator{m: m}, nil
}

// ChampionName translates a champion title. The source page identifies
// champions by their Chinese epithet rather than their name.
func (t *Translator) ChampionName(zh string) (string, bool) {
	name, ok := t.m.Champions[zh]
	return name, ok
}

// LaneName translates a lane label.
func (t *Translator) LaneName(zh string) (model.Lane, bool) {
	lane, ok := t.m.Lanes[zh]
	return model.Lane(lane), ok
}

// BracketName translates a rank bracket label.
func (t *Translator) BracketName(zh string) (model.Bracket, bool) {
	bracket, ok := t.m.Brackets[zh]
	return model.Bracket(bracket), ok
}

// Header translates a stats table header.
func (t *Translator) Header(zh string) (string, bool) {
	h, ok := t.m.Headers[zh]
	return h, ok
}
