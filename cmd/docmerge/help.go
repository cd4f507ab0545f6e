package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Merge a DOCX template with data into one PDF")
	fmt.Fprintln(w, "  analyze    List template variables and data headers")
	fmt.Fprintln(w, "  doctor     Check LibreOffice and the host setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'docmerge help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge generate --template <docx> --output <pdf> --mapping <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill the template once per data row and merge the pages into one PDF.")
	fmt.Fprintln(w, "stdout carries JSON lines: meta, progress events, then one result.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -t, --template <path>     DOCX template with MERGEFIELDs")
	fmt.Fprintln(w, "  -d, --data <path>         CSV or XLSX data (optional if every rule is constant)")
	fmt.Fprintln(w, "  -m, --mapping <path>      Mapping file: JSON, or YAML for .yaml/.yml")
	fmt.Fprintln(w, "  -o, --output <path>       Merged PDF path")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "      --chunk-size <n>      Records per rendered document (default 200)")
	fmt.Fprintln(w, "      --render-workers <n>  Parallel template fills (0 = auto)")
	fmt.Fprintln(w, "      --convert-workers <n> Parallel LibreOffice conversions (0 = auto)")
	fmt.Fprintln(w, "      --max-workers <n>     Ceiling for auto worker counts (default 8)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Renderer:")
	fmt.Fprintln(w, "      --soffice <path>      soffice binary (default: discovered)")
	fmt.Fprintln(w, "      --export-filter <s>   --convert-to filter for LibreOffice")
	fmt.Fprintln(w, "      --workdir <path>      Parent directory for scratch files")
	fmt.Fprintln(w)
	printDataUsage(w)
	printOutputControlUsage(w)
}

// printAnalyzeUsage prints usage for the analyze command.
func printAnalyzeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge analyze --template <docx> [--data <file>] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print one JSON line with the template variables and data headers.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "  -t, --template <path>     DOCX template")
	fmt.Fprintln(w, "  -d, --data <path>         CSV or XLSX data")
	fmt.Fprintln(w, "      --timeout <d>         Per-task timeout: seconds or 30s, 2m (default 30s)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	printDataUsage(w)
	printOutputControlUsage(w)
}

func printDataUsage(w io.Writer) {
	fmt.Fprintln(w, "Data:")
	fmt.Fprintln(w, "      --sheet-name <s>      XLSX sheet name")
	fmt.Fprintln(w, "      --sheet-index <n>     XLSX sheet index, 0-based")
	fmt.Fprintln(w, "      --encoding <s>        CSV encoding, e.g. windows-1252")
	fmt.Fprintln(w, "      --delimiter <c>       CSV delimiter: one character or \"tab\"")
	fmt.Fprintln(w)
}

func printOutputControlUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only log warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Log debug details")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docmerge doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check LibreOffice discovery, its version, workspace access and pool sizes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	if !isCommand(args[0]) {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "analyze":
		printAnalyzeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: docmerge version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: docmerge help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	}
}
