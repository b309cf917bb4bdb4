package descriptor

import (
	"bytes"
	"errors"

	toml "github.com/pelletier/go-toml/v2"
)

// parseTOML reads a TOML descriptor. Build types are an array of tables so
// declaration order survives decoding:
//
//	[[build_types]]
//	name = "release"
//	minify = true
func parseTOML(name string, data []byte) (*Descriptor, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &SyntaxError{File: name, Msg: "empty descriptor"}
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, &SyntaxError{File: name, Line: row, Column: col, Msg: derr.Error()}
		}
		return nil, &SyntaxError{File: name, Msg: err.Error()}
	}

	d, err := doc.descriptor()
	if err != nil {
		return nil, &SyntaxError{File: name, Msg: err.Error()}
	}
	return d, nil
}
