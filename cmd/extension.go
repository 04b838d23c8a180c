package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables passing the global flags to extensions.
const (
	EnvFile     = "IM_FILE"
	EnvCurrency = "IM_CURRENCY"
	EnvWorkers  = "IM_WORKERS"
	EnvRetries  = "IM_RETRIES"
	EnvLogLevel = "IM_LOG_LEVEL"
)

// RunExtension attempts to find and execute an external im-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	return runExtension(os.Stdin, os.Stdout, os.Stderr, subcommand, args)
}

func runExtension(stdin io.Reader, stdout, stderr io.Writer, subcommand string, args []string) (bool, int) {
	name := "im-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), extensionEnv()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv passes the effective global flags as environment variables.
func extensionEnv() []string {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return []string{
		EnvFile + "=" + cfg.File,
		EnvCurrency + "=" + cfg.Currency,
		EnvWorkers + "=" + strconv.Itoa(cfg.Workers),
		EnvRetries + "=" + strconv.Itoa(cfg.Retries),
		EnvLogLevel + "=" + level,
	}
}
