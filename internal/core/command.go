package core

const (
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpRename    Op = "rename"
	OpSetAmount Op = "set_amount"
)

type (
	// Op identifies a ledger edit.
	Op string

	// Command is a single edit against one of a slip's ledgers.
	// Title is used by add and rename, Value by set_amount.
	Command struct {
		Op    Op
		Kind  Kind
		ID    int
		Title string
		Value string
	}
)

func AddItem(kind Kind, title string) Command {
	return Command{Op: OpAdd, Kind: kind, Title: title}
}

func RemoveItem(kind Kind, id int) Command {
	return Command{Op: OpRemove, Kind: kind, ID: id}
}

func RenameItem(kind Kind, id int, title string) Command {
	return Command{Op: OpRename, Kind: kind, ID: id, Title: title}
}

func SetAmount(kind Kind, id int, raw string) Command {
	return Command{Op: OpSetAmount, Kind: kind, ID: id, Value: raw}
}

// Apply returns the ledger that results from cmd. The command's Kind is
// not consulted here; unknown ops leave the ledger unchanged.
func (l Ledger) Apply(cmd Command) Ledger {
	switch cmd.Op {
	case OpAdd:
		next, _, _ := l.Add(cmd.Title)
		return next
	case OpRemove:
		return l.Remove(cmd.ID)
	case OpRename:
		return l.Rename(cmd.ID, cmd.Title)
	case OpSetAmount:
		return l.SetAmount(cmd.ID, cmd.Value)
	default:
		return l
	}
}

// Apply routes cmd to the ledger named by its Kind and returns the new
// slip. The input slip is not modified.
func Apply(s Slip, cmd Command) Slip {
	switch cmd.Kind {
	case Earning:
		s.Earnings = s.Earnings.Apply(cmd)
	case Deduction:
		s.Deductions = s.Deductions.Apply(cmd)
	}
	return s
}

// ApplyAll folds cmds over s in order.
func ApplyAll(s Slip, cmds ...Command) Slip {
	for _, c := range cmds {
		s = Apply(s, c)
	}
	return s
}
