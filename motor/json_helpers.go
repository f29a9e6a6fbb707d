package motor

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonHelper struct{}

var helper = &jsonHelper{}

// StdlibDecoder wraps encoding/json.Decoder to implement HARDecoder
type StdlibDecoder struct {
	decoder *json.Decoder
}

func (s *StdlibDecoder) Token() (json.Token, error) {
	return s.decoder.Token()
}

func (s *StdlibDecoder) Decode(v interface{}) error {
	return s.decoder.Decode(v)
}

func (s *StdlibDecoder) More() bool {
	return s.decoder.More()
}

func newHARDecoder(r io.Reader) HARDecoder {
	return &StdlibDecoder{decoder: json.NewDecoder(r)}
}

// expectDelim consumes the next token and fails unless it is the given delimiter
func (h *jsonHelper) expectDelim(decoder HARDecoder, delim json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if token != delim {
		return fmt.Errorf("expected %v, got %v", delim, token)
	}
	return nil
}

// skipValue discards the next value, however deep
func (h *jsonHelper) skipValue(decoder HARDecoder) error {
	var discard json.RawMessage
	return decoder.Decode(&discard)
}
