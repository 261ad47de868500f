package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/cardwise/internal/domain/profile"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var errNoProfile = errors.New("no profile given: use --profile FILE or --sample")

// loadDraft reads a profile from path, or returns the sample profile when
// useSample is set and no path is given. "-" reads JSON from in.
func loadDraft(path string, useSample bool, in io.Reader) (profile.Draft, error) {
	switch {
	case path == "" && useSample:
		return profile.Sample(), nil
	case path == "":
		return profile.Draft{}, errNoProfile
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return profile.Draft{}, fmt.Errorf("read profile: %w", err)
	}
	return parseDraft(data, strings.ToLower(filepath.Ext(path)))
}

// parseDraft decodes a JSON or YAML profile document. YAML goes through
// JSON so both share the draft's strict decoding.
func parseDraft(data []byte, ext string) (profile.Draft, error) {
	if ext == ".yaml" || ext == ".yml" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return profile.Draft{}, fmt.Errorf("%w: %w", profile.ErrInvalidValue, err)
		}
		var err error
		if data, err = json.Marshal(doc); err != nil {
			return profile.Draft{}, fmt.Errorf("%w: %w", profile.ErrInvalidValue, err)
		}
	}
	var d profile.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return profile.Draft{}, err
	}
	return d, nil
}

// write encodes v in the requested machine format.
func write(w io.Writer, format string, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		node, err := yamlNode(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// yamlNode converts v through its JSON form so YAML output keeps the JSON
// field names and key order.
func yamlNode(v any) (*yaml.Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	return &doc, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q: want table, json or yaml", format)
}
