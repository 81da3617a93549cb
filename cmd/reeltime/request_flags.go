package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"reeltime/internal/config"
	"reeltime/internal/engine"
	"reeltime/internal/transcript"
)

// requestFlags gathers a planning request from command-line inputs.
type requestFlags struct {
	estimate    float64
	transcript  string
	script      string
	scriptFile  string
	requestFile string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64VarP(&f.estimate, "estimate", "e", 0, "Estimated narration length in seconds")
	flags.StringVarP(&f.transcript, "transcript", "t", "", "WhisperX JSON transcript of the narration")
	flags.StringVar(&f.script, "script", "", "Narration script text for untimed captions")
	flags.StringVar(&f.scriptFile, "script-file", "", "File holding the narration script")
	flags.StringVarP(&f.requestFile, "request", "r", "", "JSON planning request; other flags override its fields")
}

func (f *requestFlags) build(cmd *cobra.Command) (engine.Request, error) {
	var req engine.Request

	if path := strings.TrimSpace(f.requestFile); path != "" {
		loaded, err := readRequestFile(path)
		if err != nil {
			return engine.Request{}, err
		}
		req = loaded
	} else if !cmd.Flags().Changed("estimate") {
		return engine.Request{}, errors.New("either --estimate or --request is required")
	}

	if cmd.Flags().Changed("estimate") {
		req.EstimatedSeconds = f.estimate
	}

	if path := strings.TrimSpace(f.transcript); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return engine.Request{}, fmt.Errorf("resolve transcript path: %w", err)
		}
		phrases, err := transcript.LoadWhisperX(expanded)
		if err != nil {
			return engine.Request{}, err
		}
		req.Phrases = phrases
	}

	if f.script != "" && f.scriptFile != "" {
		return engine.Request{}, errors.New("--script and --script-file are mutually exclusive")
	}
	if f.script != "" {
		req.Script = f.script
	}
	if path := strings.TrimSpace(f.scriptFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return engine.Request{}, fmt.Errorf("read script: %w", err)
		}
		req.Script = string(data)
	}
	return req, nil
}

func readRequestFile(path string) (engine.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Request{}, fmt.Errorf("read request: %w", err)
	}
	var req engine.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return engine.Request{}, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}
