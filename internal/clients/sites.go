package clients

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SiteRule selects which elements of a page hold image links. A rule applies
// when its hostname matches the page's host; unmatched hosts use the
// defaults below.
type SiteRule struct {
	Hostname      string `yaml:"hostname"`
	ImageSelector string `yaml:"image_selector"`
	ImageAttr     string `yaml:"image_attr"`
}

const (
	defaultImageSelector = "img"
	defaultImageAttr     = "src"
)

// LoadSiteRules reads rules from a YAML file. A missing path yields no rules
// rather than an error; grabbing still works with the defaults.
func LoadSiteRules(path string) ([]SiteRule, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read site rules: %w", err)
	}
	var rules []SiteRule
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse site rules: %w", err)
	}
	return rules, nil
}

// RuleFor picks the rule matching rawURL's hostname, filling in defaults for
// blank fields.
func RuleFor(rules []SiteRule, rawURL string) SiteRule {
	rule := SiteRule{ImageSelector: defaultImageSelector, ImageAttr: defaultImageAttr}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rule
	}
	host := parsed.Hostname()
	for _, r := range rules {
		if strings.EqualFold(host, r.Hostname) {
			if r.ImageSelector != "" {
				rule.ImageSelector = r.ImageSelector
			}
			if r.ImageAttr != "" {
				rule.ImageAttr = r.ImageAttr
			}
			break
		}
	}
	return rule
}
