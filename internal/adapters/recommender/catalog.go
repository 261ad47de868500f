package recommender

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/okian/cardwise/internal/domain/payload"
	"github.com/okian/cardwise/internal/domain/recommendation"
)

//go:embed catalog.yaml
var bundledCatalog []byte

type catalogFile struct {
	Cards []recommendation.Recommendation `yaml:"cards"`
}

// Catalog answers every submission with a fixed, ordered card list. It makes
// no network calls.
type Catalog struct {
	cards []recommendation.Recommendation
}

// NewCatalog returns the bundled demo catalog.
func NewCatalog() *Catalog {
	c, err := LoadCatalog(bytes.NewReader(bundledCatalog))
	if err != nil {
		panic(fmt.Sprintf("bundled catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog YAML document. Unknown keys are rejected.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: catalog: %w", ErrDecode, err)
	}
	if len(f.Cards) == 0 {
		return nil, fmt.Errorf("%w: catalog has no cards", ErrDecode)
	}
	return &Catalog{cards: f.Cards}, nil
}

// Len returns the number of cards.
func (c *Catalog) Len() int { return len(c.cards) }

// Submit implements wizard.Submitter.
func (c *Catalog) Submit(ctx context.Context, p payload.Payload) (recommendation.Results, error) {
	if err := ctx.Err(); err != nil {
		return recommendation.Results{}, transportError(opSubmit, err)
	}
	return recommendation.NewResults(c.cards, p), nil
}
