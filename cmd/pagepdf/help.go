package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Paginate HTML or Markdown into PDF")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the browser and rendering service setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pagepdf help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepdf convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Paginate HTML or Markdown documents into fixed-size PDF pages.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    .html, .htm, .md or .markdown file, a directory, or - for stdin")
	fmt.Fprintln(w, "           (stdin is read when omitted and piped)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>           Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>           Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --html                  Output HTML alongside PDF")
	fmt.Fprintln(w, "      --html-only             Output HTML only, skip PDF")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-format <s>       Format: a4, letter, legal, a3, a5")
	fmt.Fprintln(w, "      --orientation <s>       Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>            Margin in points (1-200, default 40)")
	fmt.Fprintln(w, "      --oversampling <f>      Raster pixels per CSS pixel (1-4, default 2)")
	fmt.Fprintln(w, "      --reference-width <n>   Authoring width in CSS pixels (default 800)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Capture:")
	fmt.Fprintln(w, "  -s, --selector <s>          Element to capture (default: body)")
	fmt.Fprintln(w, "      --block-selector <s>    Blocks kept on one page")
	fmt.Fprintln(w, "      --adjust-mode <s>       Block adjustment: cascade, one-pass")
	fmt.Fprintln(w, "      --shift-buffer <f>      Gap in pixels kept above a pushed block")
	fmt.Fprintln(w, "      --image-format <s>      Raster format: jpeg, png")
	fmt.Fprintln(w, "      --jpeg-quality <n>      JPEG quality (1-100)")
	fmt.Fprintln(w, "      --font-timeout <d>      Wait for fonts and math typesetting")
	fmt.Fprintln(w, "      --settle-delay <d>      Pause after layout before capture")
	fmt.Fprintln(w, "      --capture-style <s>     Capture style name, path or CSS")
	fmt.Fprintln(w, "      --css <path>            Extra CSS file")
	fmt.Fprintln(w, "      --mathjax-url <url>     MathJax script for generated documents")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Layout:")
	fmt.Fprintln(w, "  -l, --layout <s>            flow (default) or units")
	fmt.Fprintln(w, "      --unit-selector <s>     Elements captured one per page")
	fmt.Fprintln(w, "      --suppress <s>          Selectors hidden in unit captures (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering service:")
	fmt.Fprintln(w, "      --remote                Render through the HTTP print service")
	fmt.Fprintln(w, "      --remote-endpoint <url> Print service URL")
	fmt.Fprintln(w, "      --remote-timeout <d>    Print service request timeout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show detailed timing and debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PAGEPDF_CONFIG, PAGEPDF_TIMEOUT, PAGEPDF_OUTPUT_DIR, PAGEPDF_PAGE_FORMAT,")
	fmt.Fprintln(w, "  PAGEPDF_LAYOUT, PAGEPDF_SELECTOR, PAGEPDF_REMOTE_ENDPOINT, PAGEPDF_ASSET_PATH,")
	fmt.Fprintln(w, "  PAGEPDF_MATHJAX_URL, PAGEPDF_WORKERS, ROD_BROWSER_BIN, ROD_NO_SANDBOX")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepdf config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pagepdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the environment and the rendering service.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pagepdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pagepdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
