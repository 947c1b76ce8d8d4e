package printers

import (
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// YAMLPrinter prints every event as a separate YAML document.
type YAMLPrinter struct {
	eventPrinter
	enc *yaml.Encoder
}

// NewYAMLPrinter creates a YAMLPrinter writing to out.
func NewYAMLPrinter(out io.Writer, opts ...Option) *YAMLPrinter {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	return &YAMLPrinter{
		eventPrinter: eventPrinter{enc: enc, opts: newOptions(opts)},
		enc:          enc,
	}
}

// Done terminates the document stream.
func (p *YAMLPrinter) Done() {
	if err := p.enc.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close yaml stream")
	}
}
