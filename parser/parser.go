// Package parser reads declaration documents and loads them into a registry.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/reglet-forms/entities"
)

// SupportedVersions is the document version range this package reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// DocumentParser parses raw document bytes into a Document.
type DocumentParser interface {
	Parse(data []byte) (*entities.Document, error)
}

// YAMLParser implements DocumentParser for YAML.
type YAMLParser struct {
	strict bool
}

// YAMLOption configures a YAMLParser.
type YAMLOption func(*YAMLParser)

// WithStrictFields rejects unknown keys.
func WithStrictFields(strict bool) YAMLOption {
	return func(p *YAMLParser) { p.strict = strict }
}

// NewYAMLParser creates a YAMLParser.
func NewYAMLParser(opts ...YAMLOption) *YAMLParser {
	p := &YAMLParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *YAMLParser) Parse(data []byte) (*entities.Document, error) {
	var decodeOpts []yaml.DecodeOption
	if p.strict {
		decodeOpts = append(decodeOpts, yaml.Strict())
	}
	var doc entities.Document
	if err := yaml.UnmarshalWithOptions(data, &doc, decodeOpts...); err != nil {
		return nil, fmt.Errorf("failed to parse YAML document: %w", err)
	}
	return &doc, nil
}

// JSONParser implements DocumentParser for JSON.
type JSONParser struct{}

// NewJSONParser creates a JSONParser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Parse(data []byte) (*entities.Document, error) {
	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON document: %w", err)
	}
	return &doc, nil
}

// CheckVersion reports an error unless version satisfies SupportedVersions.
func CheckVersion(version string) error {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", SupportedVersions, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid document version %q: %w", version, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("document version %s not supported (want %s)", v.Original(), SupportedVersions)
	}
	return nil
}

var (
	_ DocumentParser = (*YAMLParser)(nil)
	_ DocumentParser = (*JSONParser)(nil)
)
