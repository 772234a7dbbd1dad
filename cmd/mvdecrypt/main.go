package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := args[0], args[1:]
	switch command {
	case "decrypt", "restore", "encrypt":
		return runBatch(ctx, command, rest, stdout, stderr)
	case "recover-key":
		return runRecoverKey(rest, stdout, stderr)
	case "ext":
		return runExt(rest, stdout, stderr)
	case "root":
		return runRoot(rest, stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "mvdecrypt v%s\n", version)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	usage := `mvdecrypt - decrypt and re-encrypt RPG Maker MV/MZ assets

Usage:
  mvdecrypt <command> [options] <path>

Available Commands:
  decrypt       Decrypt every .rpgmvp/.rpgmvo/.rpgmvm/.png_/.ogg_/.m4a_ under a directory
  restore       Restore images from the known PNG header, no key needed
  encrypt       Obfuscate png/ogg/m4a files with a project key
  recover-key   Print the key recovered from one encrypted image
  ext           Print the real extension for a disguised one
  root          Print the project root for a game directory
  help          Show this help message
  version       Show version information

Options (decrypt, restore, encrypt):
  --config FILE        YAML configuration file
  --key HEX            Project key, hex encoded
  --raw-key STRING     Project key, used verbatim
  --out DIR            Output directory (default: decrypted)
  --workers N          Parallel workers
  --flavor mv|mz       Extension family for encrypt (default: mv)
  --no-verify          Do not check the fake file signature
  --overwrite          Replace existing output files
  --metrics-file FILE  Write Prometheus metrics when done
  --tui                Show an interactive progress bar

Examples:
  # Decrypt a game, reading the key from System.json or recovering it
  mvdecrypt decrypt --out ./assets ~/Games/Demo

  # Recover the key from a single image
  mvdecrypt recover-key www/img/system/Window.rpgmvp
`
	fmt.Fprint(w, usage)
}
