package charm

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brimdata/nibs/pkg/terminal"
	"github.com/kr/text"
)

var Help = &Spec{
	Name:  "help",
	Usage: "help [command]",
	Short: "display help for a command",
	Long: `
For help on the top-level command just type "help".
For help on a subcommand, type "help command" where command is the name of
the command.`,
	HiddenFlags: "v",
	New: func(parent Command, f *flag.FlagSet) (Command, error) {
		c := &HelpCommand{}
		f.BoolVar(&c.vflag, "v", false, "show hidden commands and flags")
		return c, nil
	},
}

type HelpCommand struct {
	vflag bool
}

// splitFlags is like strings.Split with a comma and also trims whitespace
func splitFlags(flags string) []string {
	var out []string
	for _, flag := range strings.Split(flags, ",") {
		out = append(out, strings.TrimSpace(flag))
	}
	return out
}

// flagMap creates a map that maps a name to a boolean based on the existence
// of that name in the comma-separated string of flags.  Whitespace is removed
// from each name in the flags list.  A map that contains no entries is returned
// for an empty string.
func flagMap(flags string) map[string]bool {
	hidden := make(map[string]bool)
	for _, flag := range splitFlags(flags) {
		hidden[flag] = true
	}
	return hidden
}

func (c *HelpCommand) search(args []string) (path, error) {
	parent, err := newInstance(nil, Help.Root())
	if err != nil {
		return nil, err
	}
	p := path{parent}
	for _, arg := range args {
		subcmd := parent.spec.lookupSub(arg)
		if subcmd == nil {
			return nil, fmt.Errorf("no such command: %s%s", p.pathname(arg), p.suggest(arg))
		}
		child, err := newInstance(parent.command, subcmd)
		if err != nil {
			return nil, err
		}
		p = append(p, child)
		parent = child
	}
	return p, nil
}

func (c *HelpCommand) Run(args []string) error {
	p, err := c.search(args)
	if err != nil {
		return err
	}
	displayHelp(p, c.vflag)
	return nil
}

func displayHelp(p path, vflag bool) {
	writeHelp(os.Stderr, p, vflag, terminal.Width())
}

func formatParagraph(body, tab string, lineWidth int) string {
	paragraphs := strings.Split(body, "\n\n")
	var chunks []string
	for _, paragraph := range paragraphs {
		var chunk string
		if len(paragraph) < lineWidth {
			chunk = strings.TrimRight(paragraph, " \t\n")
		} else {
			paragraph = strings.TrimSpace(paragraph)
			paragraph = text.Wrap(paragraph, lineWidth)
			lines := strings.Split(paragraph, "\n")
			chunk = strings.Join(lines, "\n"+tab)
		}
		chunks = append(chunks, chunk)
	}
	body = strings.Join(chunks, "\n\n"+tab)
	body = strings.TrimRight(body, " \t\n")
	return tab + body + "\n\n"
}

const tab = "    "

type helpWriter struct {
	w     io.Writer
	width int
	bold  bool
}

func (h *helpWriter) header(heading string) string {
	if !h.bold {
		return heading
	}
	return "\033[1m" + heading + "\033[0m"
}

func (h *helpWriter) item(heading, body string) {
	fmt.Fprint(h.w, h.header(heading)+"\n"+tab+body+"\n\n")
}

func (h *helpWriter) desc(heading, body string) {
	body = tab + strings.TrimSpace(body) + "\n\n"
	lineWidth := h.width - len(tab) - 5
	if len(body) > lineWidth {
		body = formatParagraph(strings.TrimSpace(body), tab, lineWidth)
	}
	fmt.Fprint(h.w, h.header(heading)+"\n"+body)
}

func (h *helpWriter) list(heading string, lines []string) {
	fmt.Fprint(h.w, h.header(heading)+"\n"+tab+strings.Join(lines, "\n"+tab)+"\n\n")
}

func getCommands(target *Spec, vflag bool) []string {
	var lines []string
	for _, cmd := range target.children {
		name := cmd.Name
		if cmd.Hidden {
			if !vflag {
				continue
			}
			name = "[" + name + "]"
		}
		lines = append(lines, name+" - "+cmd.Short)
	}
	return lines
}

func buildOptions(p path, parentCmd string, vflag bool) []string {
	if len(p) == 1 {
		options := p[0].options(vflag)
		if len(options) == 0 {
			options = []string{"no flags for this command"}
		}
		return options
	}
	pathCmd := p[0].spec.Name
	if parentCmd != "" {
		pathCmd = parentCmd + " " + pathCmd
	}
	childOptions := buildOptions(p[1:], pathCmd, vflag)
	options := p[0].options(vflag)
	if len(options) == 0 {
		return childOptions
	}
	// add a line separator then add the command path in brackets as the
	// header for the next set of flags
	childOptions = append(childOptions, "", "["+pathCmd+" flags]")
	return append(childOptions, options...)
}

func writeHelp(w io.Writer, p path, vflag bool, width int) {
	h := &helpWriter{w: w, width: width, bold: w == os.Stderr && terminal.IsTerminalFile(os.Stderr)}
	spec := p.last().spec
	h.item("NAME", spec.Name+" - "+spec.Short)
	h.desc("USAGE", spec.Usage)
	h.list("OPTIONS", buildOptions(p, "", vflag))
	if len(spec.children) > 0 {
		h.list("COMMANDS", getCommands(spec, vflag))
	}
	h.desc("DESCRIPTION", spec.Long)
}
