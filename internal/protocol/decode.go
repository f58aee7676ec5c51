// Package protocol implements the daemon's line-delimited JSON framing:
// one command object per input line, one response object per output line.
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"aidaemon/pkg/types"
)

// Reader yields raw input lines. Lines have no length limit; a final line
// without a trailing newline is still returned.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader { return &Reader{br: bufio.NewReader(r)} }

// ReadLine returns the next line including its newline, or io.EOF when input is exhausted.
func (r *Reader) ReadLine() ([]byte, error) {
	line, err := r.br.ReadBytes('\n')
	if len(line) > 0 {
		return line, nil
	}
	return nil, err
}

// Decode parses one input line into a Command. Unrecognized type tags decode
// to types.UnknownCommand so the dispatcher can report them; any other
// failure is a *ProtocolError.
func Decode(line []byte) (types.Command, error) {
	line = bytes.TrimSpace(line)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return nil, invalid("command must be a JSON object")
		}
		return nil, malformed(err)
	}
	if fields == nil {
		return nil, invalid("command must be a JSON object")
	}
	raw, ok := fields["type"]
	if !ok || string(raw) == "null" {
		return types.UnknownCommand{}, nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return types.UnknownCommand{Name: string(raw)}, nil
	}

	switch types.CommandType(name) {
	case types.CommandLoadModel:
		var p struct {
			ModelPath *string `json:"model_path"`
		}
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, invalid(err.Error())
		}
		if p.ModelPath == nil {
			return nil, missing("model_path", name)
		}
		return types.LoadModelCommand{ModelPath: *p.ModelPath}, nil

	case types.CommandGenerate:
		var p struct {
			Prompt            *string  `json:"prompt"`
			MaxTokens         *int     `json:"max_tokens"`
			Temperature       *float64 `json:"temperature"`
			TopP              *float64 `json:"top_p"`
			RepetitionPenalty *float64 `json:"repetition_penalty"`
		}
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, invalid(err.Error())
		}
		if p.Prompt == nil {
			return nil, missing("prompt", name)
		}
		cmd := types.GenerateCommand{
			Prompt:            *p.Prompt,
			MaxTokens:         types.DefaultMaxTokens,
			Temperature:       types.DefaultTemperature,
			TopP:              types.DefaultTopP,
			RepetitionPenalty: types.DefaultRepetitionPenalty,
		}
		if p.MaxTokens != nil {
			if *p.MaxTokens < 1 {
				return nil, invalid(fmt.Sprintf("max_tokens must be a positive integer, got %d", *p.MaxTokens))
			}
			cmd.MaxTokens = *p.MaxTokens
		}
		if p.Temperature != nil {
			cmd.Temperature = *p.Temperature
		}
		if p.TopP != nil {
			cmd.TopP = *p.TopP
		}
		if p.RepetitionPenalty != nil {
			cmd.RepetitionPenalty = *p.RepetitionPenalty
		}
		return cmd, nil

	case types.CommandStatus:
		return types.StatusCommand{}, nil
	case types.CommandShutdown:
		return types.ShutdownCommand{}, nil
	default:
		return types.UnknownCommand{Name: name}, nil
	}
}

func missing(field, cmd string) error {
	return invalid(fmt.Sprintf("missing required field %q for %s", field, cmd))
}
