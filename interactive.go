package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/fatih/color"
	"github.com/manishrjain/keys"
)

const (
	descLength = 40
	catLength  = 30
)

func singleCharMode() {
	// disable input buffering
	exec.Command("stty", "-F", "/dev/tty", "cbreak", "min", "1").Run()
	// do not display entered characters on the screen
	exec.Command("stty", "-F", "/dev/tty", "-echo").Run()
}

func saneMode() {
	exec.Command("stty", "-F", "/dev/tty", "sane").Run()
}

func clear() {
	cmd := exec.Command("clear")
	cmd.Stdout = os.Stdout
	cmd.Run()
	fmt.Println()
}

func printSummary(t Txn, idx, total int) {
	color.New(color.BgBlue, color.FgWhite).Printf(" [%3d of %3d] ", idx, total)
	color.New(color.BgYellow, color.FgBlack).Printf(" %10s ", t.Date.Format(stamp))
	desc := t.Description()
	if len(desc) > descLength {
		desc = desc[:descLength]
	}
	color.New(color.BgWhite, color.FgBlack).Printf(" %-40s", desc)
	color.New(color.BgRed, color.FgWhite).Printf(" %10s %s ", t.Amount.StringFixed(2), currencySymbol)
	fmt.Println()
}

func printCategory(d Decision) {
	cat := d.Account.Label
	if len(cat) > catLength {
		cat = cat[len(cat)-catLength:]
	}
	color.New(color.BgGreen, color.FgBlack).Printf(" %7s %-30s ", "["+d.Disposition.String()+"]", cat)
	fmt.Println()
}

func setDefaultMappings(ks *keys.Shortcuts) {
	ks.BestEffortAssign('e', ".enter", "default")
	ks.BestEffortAssign('d', ".decline", "default")
	ks.BestEffortAssign('a', ".show all", "default")
}

// terminalAsker is the interactive Asker. Ranked suggestions get
// auto-assigned shortcut keys, the full taxonomy hides behind 'a', and 'e'
// takes a typed label.
type terminalAsker struct {
	shortcutsPath string
	short         *keys.Shortcuts
	in            *bufio.Reader
	idx, total    int
}

func newTerminalAsker(shortcutsPath string) *terminalAsker {
	short := keys.ParseConfig(shortcutsPath)
	for _, label := range AccountLabels() {
		short.AutoAssign(label, "default")
	}
	return &terminalAsker{
		shortcutsPath: shortcutsPath,
		short:         short,
		in:            bufio.NewReader(os.Stdin),
	}
}

// Progress sets the position shown in summaries for subsequent prompts.
func (a *terminalAsker) Progress(idx, total int) {
	a.idx = idx
	a.total = total
}

func (a *terminalAsker) Close() {
	a.short.Persist(a.shortcutsPath)
}

func (a *terminalAsker) readChar() rune {
	b, err := a.in.ReadByte()
	if err != nil {
		return 0
	}
	return rune(b)
}

func (a *terminalAsker) readLine(prompt string) string {
	saneMode()
	defer singleCharMode()
	fmt.Print(prompt)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *terminalAsker) Confirm(t Txn, account Account) bool {
	clear()
	printSummary(t, a.idx, a.total)
	printCategory(Decision{Account: account, Disposition: DispositionConfirm})
	fmt.Println()
	color.New(color.BgWhite, color.FgBlack).Printf("Accept %s? (y/n)", account.Label)
	fmt.Println()
	ch := a.readChar()
	return ch == 'y' || ch == 'Y' || ch == '\n'
}

func (a *terminalAsker) PickAccount(t Txn, fallback Account, suggestions []string) (string, bool) {
	for {
		clear()
		printSummary(t, a.idx, a.total)
		printCategory(Decision{Account: fallback, Disposition: DispositionUnknown})
		if len(t.Description()) > descLength {
			color.New(color.BgWhite, color.FgBlack).Printf("%6s %s ", "[DESC]", t.Description())
			fmt.Println()
		}
		fmt.Println()

		var ks keys.Shortcuts
		setDefaultMappings(&ks)
		for _, s := range suggestions {
			ks.AutoAssign(s, "default")
		}
		ks.Print("default", false)

		ch := a.readChar()
		opt, has := ks.MapsTo(ch, "default")
		if !has {
			// Unrecognized key re-offers the choice instead of aborting.
			continue
		}
		switch opt {
		case ".decline":
			return "", false
		case ".enter":
			// Re-prompt in place on a bad label, so the error stays on
			// screen instead of being wiped by the next clear.
			for {
				label := a.readLine("Account: ")
				if len(label) == 0 {
					break
				}
				if _, err := LookupAccount(label); err != nil {
					errc(" Not a known account: %s ", label)
					fmt.Println()
					continue
				}
				return label, true
			}
			continue
		case ".show all":
			a.short.Print("default", false)
			ch := a.readChar()
			if label, ok := a.short.MapsTo(ch, "default"); ok {
				return label, true
			}
			continue
		default:
			return opt, true
		}
	}
}
