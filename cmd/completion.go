package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_onepass() {
    local cur prev words cword
    _init_completion || return

    local commands="init new get list update del suggest status recover diff compact purge keyring help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        get)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "-show -l" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "$(ONEPASS_NO_PROMPT=1 onepass list 2>/dev/null)" -- "$cur"))
            fi
            ;;
        update)
            if [[ $cword -eq 3 ]]; then
                COMPREPLY=($(compgen -W "name user password" -- "$cur"))
            else
                COMPREPLY=($(compgen -W "$(ONEPASS_NO_PROMPT=1 onepass list 2>/dev/null)" -- "$cur"))
            fi
            ;;
        del)
            COMPREPLY=($(compgen -W "$(ONEPASS_NO_PROMPT=1 onepass list 2>/dev/null)" -- "$cur"))
            ;;
        suggest)
            COMPREPLY=($(compgen -W "-n" -- "$cur"))
            ;;
        purge)
            COMPREPLY=($(compgen -W "-force" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _onepass onepass
`

const zshCompletion = `#compdef onepass

_onepass() {
    local -a commands
    commands=(
        'init:Create a new empty vault'
        'new:Store a new resource'
        'get:Copy a resource password to the clipboard'
        'list:List resource names'
        'update:Change a field of a resource'
        'del:Delete a resource'
        'suggest:Print a random password'
        'status:Show vault and journal status'
        'recover:Restore the vault from its journal'
        'diff:Compare the vault with its journal'
        'compact:Compact the journal'
        'purge:Delete the vault and its journal'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'onepass commands' commands
            ;;
        args)
            case "${words[2]}" in
                get)
                    _arguments \
                        '-show[Print the password instead of copying it]' \
                        '*:resource:_onepass_resources'
                    ;;
                update)
                    _arguments \
                        '2:resource:_onepass_resources' \
                        '3:field:(name user password)'
                    ;;
                del)
                    _arguments '*:resource:_onepass_resources'
                    ;;
                purge)
                    _arguments '-force[Skip confirmation]'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'onepass commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_onepass_resources() {
    local -a resources
    resources=(${(f)"$(ONEPASS_NO_PROMPT=1 onepass list 2>/dev/null)"})
    _describe -t resources 'resources' resources
}

_onepass "$@"
`

const fishCompletion = `# onepass fish completions

set -l commands init new get list update del suggest status recover diff compact purge keyring help completion

complete -c onepass -f

# Commands
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a new empty vault'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a new -d 'Store a new resource'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a get -d 'Copy a resource password'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a list -d 'List resource names'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a update -d 'Change a field of a resource'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a del -d 'Delete a resource'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a suggest -d 'Print a random password'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Restore vault from journal'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare vault with journal'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact journal'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a purge -d 'Delete vault and journal'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c onepass -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# resource names
complete -c onepass -n "__fish_seen_subcommand_from get update del" -a "(env ONEPASS_NO_PROMPT=1 onepass list 2>/dev/null)"
complete -c onepass -n "__fish_seen_subcommand_from get" -o show -d 'Print instead of copying'
complete -c onepass -n "__fish_seen_subcommand_from purge" -o force -d 'Skip confirmation'

# keyring subcommands
complete -c onepass -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c onepass -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c onepass -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
