package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/illarion/onepass/cmd"
	"github.com/illarion/onepass/internal/config"
	"github.com/illarion/onepass/internal/guard"
	"github.com/illarion/onepass/internal/logger"
)

// environment is built once per process, before any command runs
type environment struct {
	cfg   *config.Config
	log   *logger.Logger
	state *guard.State
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)

	env := &environment{
		cfg:   cfg,
		log:   logger.NewConsoleLogger("onepass", level),
		state: guard.NewState(),
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(env, os.Args[2:])
	case "new":
		runNew(env, os.Args[2:])
	case "get":
		runGet(env, os.Args[2:])
	case "list", "ls":
		runList(env, os.Args[2:])
	case "update":
		runUpdate(env, os.Args[2:])
	case "del", "rm":
		runDel(env, os.Args[2:])
	case "suggest":
		runSuggest(env, os.Args[2:])
	case "status":
		runStatus(env, os.Args[2:])
	case "recover":
		runRecover(env, os.Args[2:])
	case "diff":
		runDiff(env, os.Args[2:])
	case "compact":
		runCompact(env, os.Args[2:])
	case "purge":
		runPurge(env, os.Args[2:])
	case "keyring":
		runKeyring(env, os.Args[2:])
	case "completion":
		runCompletion(os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// newFlagSet creates a flag set with the shared -l/-location flags
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	location := new(string)
	fs.StringVar(location, "l", "", "Vault location (relative to home directory)")
	fs.StringVar(location, "location", "", "Vault location (relative to home directory)")
	return fs, location
}

// parse accepts flags before, between and after positional arguments.
// Everything after a "--" terminator is positional.
func parse(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		consumed := len(args) - fs.NArg()
		terminated := consumed > 0 && args[consumed-1] == "--"
		args = fs.Args()
		if terminated {
			return append(positional, args...)
		}
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// open resolves the vault and installs the interrupt handler
func (e *environment) open(location string) (*cmd.App, context.Context, func()) {
	path, err := e.cfg.VaultPath(location)
	if err != nil {
		cmd.HandleError(err)
	}

	hint := "onepass recover"
	if location != "" {
		hint = fmt.Sprintf("onepass recover -l %s", location)
	}

	handler := guard.NewHandler(e.state,
		guard.WithAttempts(e.cfg.InterruptAttempts),
		guard.WithInterval(e.cfg.InterruptInterval),
		guard.WithLogger(e.log.GetChildLogger("guard")),
		guard.WithRecoveryHint(hint),
	)
	ctx, stop := handler.Listen(context.Background())

	e.log.Debug().Str("path", path).Msg("vault resolved")
	return &cmd.App{
		Config: e.cfg,
		Log:    e.log,
		State:  e.state,
		Path:   path,
	}, ctx, stop
}

func requireArgs(command string, args []string, n int, usage string) {
	if len(args) < n {
		fmt.Fprintf(os.Stderr, "Error: %s requires %d argument(s)\n", command, n)
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		os.Exit(1)
	}
}

func runInit(env *environment, args []string) {
	fs, location := newFlagSet("init")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Init(ctx, app)
}

func runNew(env *environment, args []string) {
	fs, location := newFlagSet("new")
	rest := parse(fs, args)

	var name string
	if len(rest) > 0 {
		name = rest[0]
	}

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.New(ctx, app, name)
}

func runGet(env *environment, args []string) {
	fs, location := newFlagSet("get")
	show := fs.Bool("show", false, "Print the password instead of copying it")
	rest := parse(fs, args)
	requireArgs("get", rest, 1, "onepass get [-show] <name>")

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Get(ctx, app, rest[0], *show)
}

func runList(env *environment, args []string) {
	fs, location := newFlagSet("list")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.List(ctx, app)
}

func runUpdate(env *environment, args []string) {
	fs, location := newFlagSet("update")
	rest := parse(fs, args)
	requireArgs("update", rest, 2, "onepass update <name> <name|user|password> [value]")

	var value *string
	if len(rest) > 2 {
		value = &rest[2]
	}

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Update(ctx, app, rest[0], rest[1], value)
}

func runDel(env *environment, args []string) {
	fs, location := newFlagSet("del")
	rest := parse(fs, args)
	requireArgs("del", rest, 1, "onepass del <name>")

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Delete(ctx, app, rest[0])
}

func runSuggest(env *environment, args []string) {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	length := fs.Int("n", 0, "Password length")
	parse(fs, args)

	cmd.Suggest(&cmd.App{Config: env.cfg, Log: env.log, State: env.state}, *length)
}

func runStatus(env *environment, args []string) {
	fs, location := newFlagSet("status")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Status(ctx, app)
}

func runRecover(env *environment, args []string) {
	fs, location := newFlagSet("recover")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Recover(ctx, app)
}

func runDiff(env *environment, args []string) {
	fs, location := newFlagSet("diff")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Diff(ctx, app)
}

func runCompact(env *environment, args []string) {
	fs, location := newFlagSet("compact")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Compact(ctx, app)
}

func runPurge(env *environment, args []string) {
	fs, location := newFlagSet("purge")
	force := fs.Bool("force", false, "Delete without confirmation")
	parse(fs, args)

	app, ctx, stop := env.open(*location)
	defer stop()
	cmd.Purge(ctx, app, *force)
}

func runKeyring(env *environment, args []string) {
	fs, location := newFlagSet("keyring")
	rest := parse(fs, args)
	requireArgs("keyring", rest, 1, "onepass keyring <save|delete|status>")

	app, ctx, stop := env.open(*location)
	defer stop()

	switch rest[0] {
	case "save":
		cmd.KeyringSave(ctx, app)
	case "delete":
		cmd.KeyringDelete(app)
	case "status":
		cmd.KeyringStatus(app)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", rest[0])
		fmt.Fprintln(os.Stderr, "Usage: onepass keyring <save|delete|status>")
		os.Exit(1)
	}
}

func runCompletion(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: onepass completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("onepass - Single-user encrypted password vault")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  onepass <command> [-l location] [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init        Create a new empty vault")
	fmt.Println("  new         Store a new resource")
	fmt.Println("  get         Copy a resource password to the clipboard")
	fmt.Println("  list, ls    List resource names")
	fmt.Println("  update      Change the name, user or password of a resource")
	fmt.Println("  del, rm     Delete a resource")
	fmt.Println("  suggest     Print a random password")
	fmt.Println("  status      Show vault and journal status")
	fmt.Println("  recover     Restore the vault from its journal")
	fmt.Println("  diff        Compare the vault with its journal")
	fmt.Println("  compact     Compact the journal to reclaim disk space")
	fmt.Println("  purge       Delete the vault and its journal")
	fmt.Println("  keyring     Manage password in OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  onepass init                    # Create ~/.onepass/main.txt")
	fmt.Println("  onepass new twitter             # Store a resource")
	fmt.Println("  onepass get twitter             # Copy its password")
	fmt.Println("  onepass list -l work.txt        # Use another vault")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  ONEPASS_LOCATION, ONEPASS_PASSWORD, ONEPASS_NO_KEYRING, ONEPASS_NO_PROMPT,")
	fmt.Println("  ONEPASS_LOG_LEVEL, ONEPASS_INTERRUPT_ATTEMPTS, ONEPASS_INTERRUPT_INTERVAL,")
	fmt.Println("  ONEPASS_CLIPBOARD_TIMEOUT, ONEPASS_SUGGEST_LENGTH")
	fmt.Println()
	fmt.Println("Use 'onepass help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "init":
		fmt.Println("onepass init [-l location]")
		fmt.Println()
		fmt.Println("Creates an empty vault, by default at ~/.onepass/main.txt.")
		fmt.Println("Prompts for a master password used for encryption.")
		fmt.Println("The password is not stored anywhere - you must remember it.")
	case "new":
		fmt.Println("onepass new [-l location] [name]")
		fmt.Println()
		fmt.Println("Prompts for the name (unless given), user and password of a resource.")
		fmt.Println("Leave the password empty to store a generated one.")
		fmt.Println("Names must be unique. Leading and trailing spaces are removed.")
	case "get":
		fmt.Println("onepass get [-l location] [-show] <name>")
		fmt.Println()
		fmt.Println("Copies the password of a resource to the clipboard and prints its user.")
		fmt.Println("The clipboard is cleared on Enter or after ONEPASS_CLIPBOARD_TIMEOUT.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -show   Print the password instead of copying it")
	case "list", "ls":
		fmt.Println("onepass list [-l location]")
		fmt.Println()
		fmt.Println("Prints resource names, one per line, in the order they were created.")
	case "update":
		fmt.Println("onepass update [-l location] <name> <name|user|password> [value]")
		fmt.Println()
		fmt.Println("Changes one field of a resource. Without a value, prompts for it.")
		fmt.Println("Password values are read without echo.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  onepass update twitter user bob")
		fmt.Println("  onepass update twitter password")
	case "del", "rm":
		fmt.Println("onepass del [-l location] <name>")
		fmt.Println()
		fmt.Println("Deletes a resource.")
	case "suggest":
		fmt.Println("onepass suggest [-n length]")
		fmt.Println()
		fmt.Println("Prints a random password with upper and lower case letters, digits and symbols.")
	case "status":
		fmt.Println("onepass status [-l location]")
		fmt.Println()
		fmt.Println("Shows the vault file, its journal and keyring state.")
		fmt.Println("Does not require a password.")
	case "recover":
		fmt.Println("onepass recover [-l location]")
		fmt.Println()
		fmt.Println("Every write is staged in a journal next to the vault before the vault")
		fmt.Println("file is rewritten. If a write was interrupted, recover restores the")
		fmt.Println("newest snapshot from the journal. Run 'onepass diff' first to see what")
		fmt.Println("would change.")
	case "diff":
		fmt.Println("onepass diff [-l location]")
		fmt.Println()
		fmt.Println("Compares resource names and users in the vault with the journal snapshot.")
		fmt.Println("Passwords are never shown.")
	case "compact":
		fmt.Println("onepass compact [-l location]")
		fmt.Println()
		fmt.Println("Compacts the journal to reclaim unused disk space.")
		fmt.Println("Does not require a password.")
	case "purge":
		fmt.Println("onepass purge [-l location] [-force]")
		fmt.Println()
		fmt.Println("Deletes the vault, its journal and its keyring entry.")
		fmt.Println("Asks for confirmation unless -force is given.")
	case "keyring":
		fmt.Println("onepass keyring [-l location] <save|delete|status>")
		fmt.Println()
		fmt.Println("Stores the master password in the OS keyring so commands stop prompting.")
		fmt.Println("Set ONEPASS_NO_KEYRING=1 to ignore a stored password.")
	case "completion":
		fmt.Println("onepass completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(onepass completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(onepass completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  onepass completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
