package cli

import (
	"fmt"
	"io"
	"strings"
)

// GenerateCompletion writes a completion script for shell ("bash", "zsh" or
// "fish") listing kinds as the values of --kind.
func GenerateCompletion(out io.Writer, shell string, kinds []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, kinds)
	case "zsh":
		return generateZshCompletion(out, kinds)
	case "fish":
		return generateFishCompletion(out, kinds)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
}

func generateBashCompletion(out io.Writer, kinds []string) error {
	script := `# Bash completion script for fibseq
# Add this to your ~/.bashrc or ~/.bash_completion

_fibseq_completions() {
    local cur prev opts kinds
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="--help -h --version -V --kind --count --reset-at --skip --first --second --items --timeout --json --hex -v --quiet -q --no-color --verify --interactive --completion --server --port --max-count --max-skip --max-sessions --session-ttl --rate-limit"

    kinds="%s all"

    case "${prev}" in
        --kind)
            COMPREPLY=( $(compgen -W "${kinds}" -- "${cur}") )
            return 0
            ;;
        --completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        --port)
            COMPREPLY=( $(compgen -W "8080 3000 5000 9000" -- "${cur}") )
            return 0
            ;;
        --timeout|--session-ttl)
            COMPREPLY=( $(compgen -W "30s 1m 5m 15m 1h" -- "${cur}") )
            return 0
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _fibseq_completions fibseq
`
	_, err := fmt.Fprintf(out, script, strings.Join(kinds, " "))
	return err
}

func generateZshCompletion(out io.Writer, kinds []string) error {
	script := `#compdef fibseq

# Zsh completion script for fibseq
# Add this to your ~/.zshrc or place in $fpath

_fibseq() {
    local -a kinds
    kinds=(%s all)

    _arguments -s \
        '(-h --help)'{-h,--help}'[Show help message]' \
        '(-V --version)'{-V,--version}'[Show version information]' \
        '--kind[Sequence kind]:kind:($kinds)' \
        '--count[Number of terms to pull]:number:' \
        '--reset-at[Calls that carry a reset signal]:calls:' \
        '--skip[Terms to drop before the first call]:number:' \
        '--first[First seed value]:number:' \
        '--second[Second seed value]:number:' \
        '--items[Comma-separated values to replay]:values:' \
        '--timeout[Maximum execution time]:duration:(30s 1m 5m 15m 1h)' \
        '--json[Output in JSON format]' \
        '--hex[Display values in hexadecimal]' \
        '-v[Display full values]' \
        '(-q --quiet)'{-q,--quiet}'[Quiet mode for scripts]' \
        '--no-color[Disable colored output]' \
        '--verify[Replay the plan and compare]' \
        '--interactive[Start interactive REPL mode]' \
        '--completion[Generate completion script]:shell:(bash zsh fish)' \
        '--server[Start HTTP server mode]' \
        '--port[Server port]:port:(8080 3000 5000 9000)' \
        '--max-count[Largest count per request]:number:' \
        '--max-skip[Largest skip per request]:number:' \
        '--max-sessions[Largest number of live sessions]:number:' \
        '--session-ttl[Idle session lifetime]:duration:(5m 15m 1h)' \
        '--rate-limit[Requests per minute per client]:number:'
}

_fibseq "$@"
`
	_, err := fmt.Fprintf(out, script, strings.Join(kinds, " "))
	return err
}

func generateFishCompletion(out io.Writer, kinds []string) error {
	script := `# Fish completion script for fibseq
# Add this to ~/.config/fish/completions/fibseq.fish

complete -c fibseq -f

complete -c fibseq -s h -l help -d 'Show help message'
complete -c fibseq -s V -l version -d 'Show version information'

# Sequence options
complete -c fibseq -l kind -d 'Sequence kind' -xa '%s all'
complete -c fibseq -l count -d 'Number of terms to pull' -x
complete -c fibseq -l reset-at -d 'Calls that carry a reset signal' -x
complete -c fibseq -l skip -d 'Terms to drop before the first call' -x
complete -c fibseq -l first -d 'First seed value' -x
complete -c fibseq -l second -d 'Second seed value' -x
complete -c fibseq -l items -d 'Comma-separated values to replay' -x
complete -c fibseq -l timeout -d 'Maximum execution time' -xa '30s 1m 5m 15m 1h'
complete -c fibseq -l verify -d 'Replay the plan and compare'

# Output options
complete -c fibseq -l json -d 'Output in JSON format'
complete -c fibseq -l hex -d 'Display values in hexadecimal'
complete -c fibseq -s v -d 'Display full values'
complete -c fibseq -s q -l quiet -d 'Quiet mode for scripts'
complete -c fibseq -l no-color -d 'Disable colored output'

# Server mode
complete -c fibseq -l server -d 'Start HTTP server mode'
complete -c fibseq -l port -d 'Server port' -xa '8080 3000 5000 9000'
complete -c fibseq -l max-count -d 'Largest count per request' -x
complete -c fibseq -l max-skip -d 'Largest skip per request' -x
complete -c fibseq -l max-sessions -d 'Largest number of live sessions' -x
complete -c fibseq -l session-ttl -d 'Idle session lifetime' -xa '5m 15m 1h'
complete -c fibseq -l rate-limit -d 'Requests per minute per client' -x

complete -c fibseq -l interactive -d 'Start interactive REPL mode'
complete -c fibseq -l completion -d 'Generate completion script' -xa 'bash zsh fish'
`
	_, err := fmt.Fprintf(out, script, strings.Join(kinds, " "))
	return err
}
