package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/aledsdavies/tale/internal/cliconfig"
	"github.com/aledsdavies/tale/internal/engine"
	"github.com/aledsdavies/tale/internal/translator"
)

// Exit code constants
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitIOError          = 2
	ExitFailure          = 3
)

var (
	inputsFlag []string
	formatFlag string
	debugFlag  bool
	configFlag string
)

func main() {
	root := &cobra.Command{
		Use:   "tale",
		Short: "Translate and run TALE scripts",
	}
	root.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "output format: json or cbor")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "print the translated program's statement tree before running")
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to a tale CLI config file")

	root.AddCommand(runCmd(), analyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitInvalidArguments)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Translate and execute a TALE script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.Load(configFlag)
			if err != nil && configFlag != "" {
				fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
				os.Exit(ExitIOError)
			}
			code, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
				os.Exit(ExitIOError)
			}

			if debugFlag || cfg.PrintTranslated {
				if prog, terr := translator.Translate(string(code)); terr == nil {
					repr.Println(prog)
				}
			}

			inputs := inputsFlag
			if len(inputs) == 0 {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					inputs = append(inputs, sc.Text())
				}
			}
			result := engine.Run(string(code), inputs)
			format := resolveFormat(cfg)
			if format == "cbor" {
				return emitCBOR(result)
			}
			return emitJSON(result)
		},
	}
	cmd.Flags().StringArrayVarP(&inputsFlag, "input", "i", nil, "one `ask` value, repeatable in order")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Translate a TALE script without running it, reporting diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cliconfig.Load(configFlag)
			if err != nil && configFlag != "" {
				fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
				os.Exit(ExitIOError)
			}
			code, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
				os.Exit(ExitIOError)
			}

			if debugFlag || cfg.PrintTranslated {
				if prog, terr := translator.Translate(string(code)); terr == nil {
					repr.Println(prog)
				}
			}

			diags := engine.Analyze(string(code))
			format := resolveFormat(cfg)
			if format == "cbor" {
				return emitCBOR(diags)
			}
			return emitJSON(diags)
		},
	}
}

func resolveFormat(cfg cliconfig.Config) string {
	if formatFlag != "" {
		return formatFlag
	}
	return cfg.DefaultFormat
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func emitCBOR(v any) error {
	data, err := engine.EncodeCBOR(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
