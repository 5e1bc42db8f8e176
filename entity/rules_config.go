package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// WriteDefaultRuleSet writes the built-in language keyword table to path when the
// file does not exist yet, giving users a starting point for edits. The format
// follows the extension: .toml, otherwise JSON.
func WriteDefaultRuleSet(path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	clean = filepath.Clean(clean)
	if _, err := os.Stat(clean); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat rule file: %w", err)
	}
	if dir := filepath.Dir(clean); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create rule file dir: %w", err)
		}
	}
	data, err := encodeRuleSet(clean, DefaultRuleSet())
	if err != nil {
		return err
	}
	if err := os.WriteFile(clean, data, 0o644); err != nil {
		return fmt.Errorf("write rule file: %w", err)
	}
	return nil
}

// LoadRuleSet reads language keyword overrides from path and merges them over the
// built-in table by language name. An empty path yields the defaults. The boolean
// reports whether a file was loaded; on error the defaults are returned as well.
func LoadRuleSet(path string) (RuleSet, bool, error) {
	defaults := DefaultRuleSet()
	clean := strings.TrimSpace(path)
	if clean == "" {
		return defaults, false, nil
	}
	data, err := os.ReadFile(filepath.Clean(clean))
	if err != nil {
		return defaults, false, err
	}
	var overrides RuleSet
	if isTOML(clean) {
		if _, err := toml.Decode(string(data), &overrides); err != nil {
			return defaults, false, fmt.Errorf("decode rule file: %w", err)
		}
	} else if err := json.Unmarshal(data, &overrides); err != nil {
		return defaults, false, fmt.Errorf("decode rule file: %w", err)
	}
	return mergeRuleSets(defaults, overrides), true, nil
}

// mergeRuleSets replaces base languages that share a name with an override and
// appends the new ones in override order.
func mergeRuleSets(base, overrides RuleSet) RuleSet {
	merged := RuleSet{Languages: cloneLanguageRules(base.Languages)}
	index := make(map[string]int, len(merged.Languages))
	for i, l := range merged.Languages {
		index[strings.ToLower(l.Name)] = i
	}
	for _, o := range cloneLanguageRules(overrides.Languages) {
		key := strings.ToLower(strings.TrimSpace(o.Name))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			o.Name = merged.Languages[i].Name
			merged.Languages[i] = o
			continue
		}
		index[key] = len(merged.Languages)
		merged.Languages = append(merged.Languages, o)
	}
	return merged
}

func encodeRuleSet(path string, rules RuleSet) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(rules); err != nil {
			return nil, fmt.Errorf("encode rule file: %w", err)
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode rule file: %w", err)
	}
	return append(data, '\n'), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
