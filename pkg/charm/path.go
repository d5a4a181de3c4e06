package charm

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

type path []*instance

// parse walks args down the command tree, creating an instance for each
// command named and parsing its flags.  It returns the remaining args for
// the last command.  The -h and -help flags and a trailing "help" request
// yield NeedHelp.
func parse(spec *Spec, args []string) (path, []string, bool, error) {
	var p path
	var parent Command
	var showHidden bool
	for {
		inst, err := newInstance(parent, spec)
		if err != nil {
			return nil, nil, false, err
		}
		p = append(p, inst)
		if err := inst.flags.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return p, nil, showHidden, NeedHelp
			}
			return p, nil, showHidden, fmt.Errorf("%s: %w", p.pathname(), err)
		}
		if f := inst.flags.Lookup("hidden"); f != nil && f.Value.String() == "true" {
			showHidden = true
		}
		args = inst.flags.Args()
		if len(args) == 0 {
			return p, args, showHidden, nil
		}
		child := spec.lookupSub(args[0])
		if child == nil {
			return p, args, showHidden, nil
		}
		parent = inst.command
		spec = child
		args = args[1:]
	}
}

// parseHelp returns the path of commands named by args, ignoring flags.
func parseHelp(spec *Spec, args []string) (path, error) {
	inst, err := newInstance(nil, spec)
	if err != nil {
		return nil, err
	}
	p := path{inst}
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		child := spec.lookupSub(arg)
		if child == nil {
			break
		}
		if inst, err = newInstance(inst.command, child); err != nil {
			return nil, err
		}
		p = append(p, inst)
		spec = child
	}
	return p, nil
}

func (p path) run(args []string) error {
	err := p.last().command.Run(args)
	if err == ErrNoRun {
		if len(args) == 0 {
			err = fmt.Errorf("%q: requires a sub-command: %s", p.pathname(), p.subCommands())
		} else {
			err = fmt.Errorf("%q: no such sub-command %q%s: options are: %s", p.pathname(), args[0], p.suggest(args[0]), p.subCommands())
		}
	}
	return err
}

func (p path) last() *instance {
	return p[len(p)-1]
}

func (p path) pathname(args ...string) string {
	names := make([]string, 0, len(p)+len(args))
	for _, sub := range p {
		names = append(names, sub.spec.Name)
	}
	names = append(names, args...)
	return strings.Join(names, " ")
}

func (p path) subCommands() string {
	names := make([]string, 0, len(p))
	for _, spec := range p.last().spec.children {
		if !spec.Hidden {
			names = append(names, spec.Name)
		}
	}
	return strings.Join(names, " ")
}

// suggest names the sub-command closest to name when it is within a
// couple of edits.
func (p path) suggest(name string) string {
	best, dist := "", 3
	for _, spec := range p.last().spec.children {
		if spec.Hidden {
			continue
		}
		if d := levenshtein.ComputeDistance(name, spec.Name); d < dist {
			best, dist = spec.Name, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
