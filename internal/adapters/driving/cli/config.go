package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/kbrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbrag/internal/config"
	"github.com/custodia-labs/kbrag/internal/core/ports/driven"
)

// secretMask replaces secret values in listings.
const secretMask = "********"

var (
	configSecret      bool
	configShowSecrets bool
)

// newConfigStore opens the config file edited by "kbrag config". Tests replace it.
var newConfigStore = func() (driven.ConfigStore, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(config.PathEnv)
	}
	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	return file.NewConfigStore(dir)
}

// readSecret reads a value without echo when stdin is a terminal.
var readSecret = func(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Value: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading secret: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit the config file",
	Long: `Reads and edits ~/.kbrag/config.toml. Keys use dot notation matching the
file's tables, e.g. "llm.model" or "vector.url".

Environment variables override file values at runtime. Run
"kbrag config env" to list them.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one value, or every value when no key is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a value",
	Long: `Sets a value and saves the file. "true"/"false" and numbers are stored
typed, everything else as a string.

With --secret the value is read from the terminal without echo and may be
omitted from the command line.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newConfigStore()
		if err != nil {
			return err
		}
		if err := store.Unset(args[0]); err != nil {
			return fmt.Errorf("removing %s: %w", args[0], err)
		}
		cmd.Printf("%s removed\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := newConfigStore()
		if err != nil {
			return err
		}
		cmd.Println(store.Path())
		return nil
	},
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables read at runtime",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(config.Usage())
	},
}

func init() {
	configGetCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print secret values in listings")
	configSetCmd.Flags().BoolVar(&configSecret, "secret", false, "read the value without echo")
	configCmd.AddCommand(configGetCmd, configSetCmd, configUnsetCmd, configPathCmd, configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := newConfigStore()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		value, ok := store.Get(args[0])
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		cmd.Println(value)
		return nil
	}

	keys := store.Keys()
	if len(keys) == 0 {
		cmd.Printf("No values set in %s\n", store.Path())
		return nil
	}
	for _, key := range keys {
		value, _ := store.Get(key)
		if isSecretKey(key) && !configShowSecrets {
			value = secretMask
		}
		cmd.Printf("%s = %v\n", key, value)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	var raw string
	switch {
	case len(args) == 2:
		raw = args[1]
	case configSecret:
		v, err := readSecret(cmd)
		if err != nil {
			return err
		}
		raw = v
	default:
		return errors.New("missing value (use --secret to type it)")
	}

	store, err := newConfigStore()
	if err != nil {
		return err
	}

	// The secret flag forces a string: tokens can look numeric.
	var value any = raw
	if !configSecret {
		value = parseValue(raw)
	}
	if err := store.Set(key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}

	if configSecret || isSecretKey(key) {
		cmd.Printf("%s updated\n", key)
	} else {
		cmd.Printf("%s = %v\n", key, value)
	}
	return nil
}

// parseValue types raw as bool, integer or float where it parses as one.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil && (raw == "true" || raw == "false") {
		return b
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"api_key", "token", "password"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
