package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/reversi-lobby/internal/board"
)

const (
	CmdList    = "/list"
	CmdRoom    = "/room"
	CmdJoin    = "/join"
	CmdName    = "/name"
	CmdMembers = "/members"
	CmdStart   = "/start"
	CmdRegist  = "/regist"
	CmdPut     = "/put"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	CmdList:    0,
	CmdRoom:    0,
	CmdJoin:    1,
	CmdName:    1,
	CmdMembers: 0,
	CmdStart:   0,
	CmdRegist:  1,
	CmdPut:     2,
}

// Commands whose single argument is the rest of the line, spaces included.
var restOfLine = map[string]bool{
	CmdJoin: true,
	CmdName: true,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgs        = errors.New("invalid command arguments")
)

// Command is one outbound line. A command with an empty Name is a chat
// line carried in Args[0].
type Command struct {
	Name string
	Args []string
}

func (c Command) IsChat() bool { return c.Name == "" }

func (c Command) String() string {
	if c.IsChat() {
		if len(c.Args) == 0 {
			return ""
		}
		return c.Args[0]
	}
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Validate checks the argument count and, for /regist and /put, the
// argument values.
func (c Command) Validate() error {
	if c.IsChat() {
		if len(c.Args) != 1 || strings.TrimSpace(c.Args[0]) == "" {
			return fmt.Errorf("%w: empty chat line", ErrBadArgs)
		}
		if strings.HasPrefix(c.Args[0], "/") {
			return fmt.Errorf("%w: chat line starts with /", ErrBadArgs)
		}
		return nil
	}
	nargs, ok := commandNargs[c.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Name)
	}
	if nargs != len(c.Args) {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrBadArgs, c.Name, nargs, len(c.Args))
	}
	switch c.Name {
	case CmdJoin, CmdName:
		if strings.TrimSpace(c.Args[0]) == "" {
			return fmt.Errorf("%w: %s needs a value", ErrBadArgs, c.Name)
		}
	case CmdRegist:
		if _, err := parseSeat(c.Args[0]); err != nil {
			return err
		}
	case CmdPut:
		if _, err := parseCell(c.Args); err != nil {
			return err
		}
	}
	return nil
}

// Parse reads a line typed by the user. Lines not starting with / are chat.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		c := Chat(line)
		if err := c.Validate(); err != nil {
			return Command{}, err
		}
		return c, nil
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var c Command
	switch {
	case restOfLine[name]:
		c = Command{Name: name}
		if rest != "" {
			c.Args = []string{rest}
		}
	default:
		c = Command{Name: name}
		if fields := strings.Fields(rest); len(fields) > 0 {
			c.Args = fields
		}
	}
	if err := c.Validate(); err != nil {
		return Command{}, err
	}
	return c, nil
}

func parseSeat(s string) (int, error) {
	seat, err := strconv.Atoi(s)
	if err != nil || (seat != 1 && seat != 2) {
		return 0, fmt.Errorf("%w: seat must be 1 or 2, got %q", ErrBadArgs, s)
	}
	return seat, nil
}

func parseCell(twoStrings []string) (c board.Cell, err error) {
	if c.Col, err = strconv.Atoi(twoStrings[0]); err != nil {
		return c, fmt.Errorf("%w: column must be an int", ErrBadArgs)
	}
	if c.Row, err = strconv.Atoi(twoStrings[1]); err != nil {
		return c, fmt.Errorf("%w: row must be an int", ErrBadArgs)
	}
	if c.Col < 0 || c.Row < 0 {
		return c, fmt.Errorf("%w: negative cell (%d,%d)", ErrBadArgs, c.Col, c.Row)
	}
	return c, nil
}

// Cell returns the target of a /put command.
func (c Command) Cell() (board.Cell, bool) {
	if c.Name != CmdPut || len(c.Args) != 2 {
		return board.Cell{}, false
	}
	cell, err := parseCell(c.Args)
	return cell, err == nil
}

func List() Command    { return Command{Name: CmdList} }
func Room() Command    { return Command{Name: CmdRoom} }
func Members() Command { return Command{Name: CmdMembers} }
func Start() Command   { return Command{Name: CmdStart} }

func Join(room string) Command { return Command{Name: CmdJoin, Args: []string{room}} }
func Name(name string) Command { return Command{Name: CmdName, Args: []string{name}} }

func Regist(seat int) Command {
	return Command{Name: CmdRegist, Args: []string{strconv.Itoa(seat)}}
}

func Put(c board.Cell) Command {
	return Command{Name: CmdPut, Args: []string{strconv.Itoa(c.Col), strconv.Itoa(c.Row)}}
}

func Chat(text string) Command { return Command{Args: []string{text}} }
