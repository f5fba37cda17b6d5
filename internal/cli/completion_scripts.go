package cli

var completionScripts = map[string]string{
	"bash": bashCompletionScript,
	"zsh":  zshCompletionScript,
	"fish": fishCompletionScript,
}

const bashCompletionScript = `# bash completion for mcpchat
_mcpchat_completion() {
  local cur first second
  COMPREPLY=()
  cur="${COMP_WORDS[COMP_CWORD]}"

  if [[ ${COMP_CWORD} -eq 1 ]]; then
    local words="servers tools resources call read add remove enable disable probe completion --help -h --version -V --debug"
    COMPREPLY=( $(compgen -W "$words" -- "$cur") )
    return 0
  fi

  first="${COMP_WORDS[1]}"
  case "$first" in
    completion)
      COMPREPLY=( $(compgen -W "bash zsh fish" -- "$cur") )
      return 0
      ;;
    add)
      COMPREPLY=( $(compgen -W "--name --overwrite --help -h" -- "$cur") )
      return 0
      ;;
    tools|resources|remove|enable|disable|call|read)
      if [[ ${COMP_CWORD} -eq 2 ]]; then
        COMPREPLY=( $(compgen -W "$(mcpchat __complete servers 2>/dev/null)" -- "$cur") )
        return 0
      fi
      ;;
  esac

  if [[ "$first" == "call" ]]; then
    second="${COMP_WORDS[2]}"
    if [[ ${COMP_CWORD} -eq 3 ]]; then
      COMPREPLY=( $(compgen -W "$(mcpchat __complete tools "$second" 2>/dev/null)" -- "$cur") )
      return 0
    fi
    local tool="${COMP_WORDS[3]}"
    COMPREPLY=( $(compgen -W "$(mcpchat __complete flags "$second" "$tool" 2>/dev/null) --quiet -q --verbose -v --help -h" -- "$cur") )
    return 0
  fi

  return 0
}
complete -F _mcpchat_completion mcpchat
`

const zshCompletionScript = `#compdef mcpchat
# zsh completion for mcpchat
_mcpchat() {
  local -a words
  if (( CURRENT == 2 )); then
    words=(servers tools resources call read add remove enable disable probe completion)
    _describe 'command' words
    return
  fi

  case "$words[2]" in
    completion)
      compadd bash zsh fish
      ;;
    add)
      compadd -- --name --overwrite --help
      ;;
    tools|resources|remove|enable|disable|call|read)
      if (( CURRENT == 3 )); then
        compadd -- ${(f)"$(mcpchat __complete servers 2>/dev/null)"}
      elif [[ "$words[2]" == "call" ]]; then
        if (( CURRENT == 4 )); then
          compadd -- ${(f)"$(mcpchat __complete tools $words[3] 2>/dev/null)"}
        else
          compadd -- ${(f)"$(mcpchat __complete flags $words[3] $words[4] 2>/dev/null)"} --quiet --verbose --help
        fi
      fi
      ;;
  esac
}
_mcpchat "$@"
`

const fishCompletionScript = `# fish completion for mcpchat
complete -c mcpchat -f

complete -c mcpchat -n '__fish_use_subcommand' -a 'servers tools resources call read add remove enable disable probe completion'
complete -c mcpchat -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'
complete -c mcpchat -n '__fish_seen_subcommand_from add' -l name -l overwrite -l help
complete -c mcpchat -n '__fish_seen_subcommand_from tools resources remove enable disable; and test (count (commandline -opc)) -eq 2' -a '(mcpchat __complete servers 2>/dev/null)'
complete -c mcpchat -n '__fish_seen_subcommand_from call read; and test (count (commandline -opc)) -eq 2' -a '(mcpchat __complete servers 2>/dev/null)'
complete -c mcpchat -n '__fish_seen_subcommand_from call; and test (count (commandline -opc)) -eq 3' -a '(mcpchat __complete tools (commandline -opc)[3] 2>/dev/null)'
complete -c mcpchat -n '__fish_seen_subcommand_from call; and test (count (commandline -opc)) -ge 4' -a '(mcpchat __complete flags (commandline -opc)[3] (commandline -opc)[4] 2>/dev/null)'
`
