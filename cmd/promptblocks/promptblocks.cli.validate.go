package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-promptblocks"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	inputPath string
	format    string
	strict    bool
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid            bool     `json:"valid"`
	Errors           []string `json:"errors,omitempty"`
	MissingVariables []string `json:"missing_variables,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgMissingInput, err)
		return ExitCodeUsageError
	}

	// Read composition document
	source, err := readInput(cfg.inputPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	comp, err := promptblocks.ParseCompositionDocument(source)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgParseDocFailed, err)
		return ExitCodeInputError
	}

	engine := promptblocks.MustNew()
	result := engine.ValidateStorageFormat(comp.Content)

	output := validationOutput{
		Valid:  result.IsValid,
		Errors: result.Errors,
	}

	// Strict mode also requires every variable in use to have a value
	if cfg.strict && result.IsValid {
		doc := engine.Decode(comp.Content)
		varResult, err := engine.ValidateDocumentVariables(context.Background(), doc, comp.Variables)
		if err == nil && !varResult.IsValid {
			output.Valid = false
			output.MissingVariables = varResult.MissingVariables
		}
	}

	if cfg.format == OutputFormatJSON {
		return outputValidationJSON(&output, stdout)
	}
	return outputValidationText(&output, stdout)
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &validateConfig{}

	fs.StringVar(&cfg.inputPath, FlagInput, "", "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.BoolVar(&cfg.strict, FlagStrictMode, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.inputPath == "" {
		return nil, errors.New(ErrMsgMissingInput)
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputValidationText(output *validationOutput, stdout io.Writer) int {
	if output.Valid {
		fmt.Fprintln(stdout, ValidationTextSuccess)
		return ExitCodeSuccess
	}

	if len(output.Errors) > 0 {
		fmt.Fprintln(stdout, ValidationTextIssueHeader)
		for _, msg := range output.Errors {
			fmt.Fprintf(stdout, ValidationTextIssueFormat+FmtNewline, msg)
		}
		fmt.Fprintf(stdout, ValidationTextSummary+FmtNewline, len(output.Errors))
	}

	for _, name := range output.MissingVariables {
		fmt.Fprintf(stdout, FmtErrorWithDetail, "missing variable value", name)
	}

	return ExitCodeValidationError
}

func outputValidationJSON(output *validationOutput, stdout io.Writer) int {
	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}
