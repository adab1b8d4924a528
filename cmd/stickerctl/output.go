package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failure is the JSON form of a rejected manifest
type failure struct {
	Kind           string `json:"kind"`
	Reason         string `json:"reason"`
	PackIdentifier string `json:"pack_identifier,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	Cause          string `json:"cause,omitempty"`
}

func describeFailure(err error) failure {
	var structErr *domain.StructuralError
	if errors.As(err, &structErr) {
		return newFailure("manifest", structErr.Reason, structErr.PackIdentifier, structErr.FileName, structErr.Cause)
	}
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		return newFailure("pack", valErr.Reason, valErr.PackIdentifier, valErr.FileName, valErr.Cause)
	}
	return failure{Kind: "error", Reason: err.Error()}
}

func newFailure(kind, reason, identifier, fileName string, cause error) failure {
	f := failure{Kind: kind, Reason: reason, PackIdentifier: identifier, FileName: fileName}
	if cause != nil {
		f.Cause = cause.Error()
	}
	return f
}

// reportFailure prints err in the selected format and returns it so the
// command exits non-zero
func reportFailure(cmd *cobra.Command, err error) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		if encErr := writeJSON(cmd, map[string]any{"ok": false, "failure": describeFailure(err)}); encErr != nil {
			return encErr
		}
	}
	return err
}
