package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/itsatony/go-promptblocks"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	inputPath    string
	vars         varAssignments
	varsFilePath string
	outputPath   string
	preview      bool
	storeDriver  string
	storeConn    string
}

// varAssignments collects repeatable --var name=value flags.
type varAssignments map[string]string

func (v varAssignments) String() string {
	return fmt.Sprintf("%d assignments", len(v))
}

func (v varAssignments) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return errors.New(ErrMsgInvalidVar)
	}
	v[name] = value
	return nil
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
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

	// Variable precedence: frontmatter < vars file < --var flags
	values, err := loadVariables(comp.Variables, cfg.varsFilePath, cfg.vars)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidJSON, err)
		return ExitCodeInputError
	}

	opts := []promptblocks.Option{}
	if cfg.storeDriver != "" {
		store, err := promptblocks.OpenStore(cfg.storeDriver, cfg.storeConn)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgOpenStoreFailed, err)
			return ExitCodeError
		}
		defer store.Close()
		opts = append(opts, promptblocks.WithBlockResolver(promptblocks.NewStoreBlockResolver(store)))
	}

	engine := promptblocks.MustNew(opts...)
	doc := engine.Decode(comp.Content)

	ctx := context.Background()
	var result string
	if cfg.preview {
		result, err = engine.Preview(ctx, doc, values)
	} else {
		result, err = engine.Render(ctx, doc, values)
	}
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &renderConfig{vars: make(varAssignments)}

	fs.StringVar(&cfg.inputPath, FlagInput, "", "")
	fs.StringVar(&cfg.inputPath, FlagInputShort, "", "")
	fs.Var(cfg.vars, FlagVar, "")
	fs.StringVar(&cfg.varsFilePath, FlagVarsFile, "", "")
	fs.StringVar(&cfg.varsFilePath, FlagVarsFileShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.preview, FlagPreview, false, "")
	fs.StringVar(&cfg.storeDriver, FlagStore, "", "")
	fs.StringVar(&cfg.storeConn, FlagConn, "", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Validation
	if cfg.inputPath == "" {
		return nil, errors.New(ErrMsgMissingInput)
	}

	return cfg, nil
}

// loadVariables merges frontmatter values, a JSON vars file, and --var flags,
// later sources winning.
func loadVariables(frontmatter map[string]string, filePath string, flags varAssignments) (map[string]string, error) {
	values := make(map[string]string, len(frontmatter)+len(flags))
	for k, v := range frontmatter {
		values[k] = v
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		var fromFile map[string]string
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}

	for k, v := range flags {
		values[k] = v
	}

	return values, nil
}
