package helper

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/log"
	"gopkg.in/yaml.v3"
)

// Format output format of command line
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Write encode data to w; empty format means yaml
func Write(w io.Writer, format Format, data interface{}) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return errors.Wrap(err, "fail to write yaml")
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(data), "fail to write json")
	}

	return errors.Errorf("unsupported output format: %s", format)
}

// ReadFile read data from file or stdin if name is "-"
func ReadFile(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}

	log.Debugf("read file %s", name)
	return os.ReadFile(name)
}
