package config

import (
	"fmt"
	"os"

	"github.com/pb33f/flowscope/motor"
	"gopkg.in/yaml.v3"
)

// CategoryFile is the layout of a category rules file:
//
//	categories:
//	  - tag: graphql
//	    urlSuffix: /graphql
//	  - tag: wasm
//	    mimePrefix: application/wasm
type CategoryFile struct {
	Categories []CategoryRuleYAML `yaml:"categories"`
}

type CategoryRuleYAML struct {
	Tag        string `yaml:"tag"`
	MimePrefix string `yaml:"mimePrefix"`
	URLSuffix  string `yaml:"urlSuffix"`
}

// ParseCategoryRules decodes and validates rules from YAML
func ParseCategoryRules(data []byte) ([]motor.CategoryRule, error) {
	var file CategoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category rules: %w", err)
	}

	rules := make([]motor.CategoryRule, 0, len(file.Categories))
	for i, c := range file.Categories {
		rule := motor.CategoryRule{Tag: c.Tag, MimePrefix: c.MimePrefix, URLSuffix: c.URLSuffix}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("category rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadCategoryRules reads rules from a YAML file
func LoadCategoryRules(path string) ([]motor.CategoryRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category rules: %w", err)
	}
	return ParseCategoryRules(data)
}

// BuildRegistry returns a registry with the given rules ahead of the built-in categories,
// so a user rule wins over a built-in one for the same entry.
func BuildRegistry(rules []motor.CategoryRule) (*motor.Registry, error) {
	reg := motor.NewRegistry()
	if err := reg.RegisterRules(rules); err != nil {
		return nil, err
	}
	motor.RegisterBuiltins(reg)
	return reg, nil
}

// LoadRegistry builds the registry for a rules file, or the default one when path is empty
func LoadRegistry(path string) (*motor.Registry, error) {
	if path == "" {
		return motor.DefaultRegistry(), nil
	}
	rules, err := LoadCategoryRules(path)
	if err != nil {
		return nil, err
	}
	return BuildRegistry(rules)
}
