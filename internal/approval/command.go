package approval

// Command is the canonical form of a reviewer interaction, produced by the
// payload parser and consumed by the state machine.
type Command interface {
	isCommand()
}

// EditCommand asks to open the title-edit modal for an article.
type EditCommand struct {
	ArticleID string
	TriggerID string
}

// ApproveCommand picks one of the proposed titles ("A", "B", or "C").
type ApproveCommand struct {
	ArticleID string
	Choice    string
}

// RegenCommand requests a fresh set of proposed titles.
type RegenCommand struct {
	ArticleID string
}

// EditSubmitCommand carries the manually entered title from the edit modal.
type EditSubmitCommand struct {
	ArticleID string
	NewTitle  string
}

// UnknownCommand is a recognized interaction with an unhandled action.
type UnknownCommand struct {
	ActionID string
}

// IgnoreCommand is any payload shape this service does not act on. It is
// always acknowledged, never an error to the caller.
type IgnoreCommand struct{}

func (EditCommand) isCommand()       {}
func (ApproveCommand) isCommand()    {}
func (RegenCommand) isCommand()      {}
func (EditSubmitCommand) isCommand() {}
func (UnknownCommand) isCommand()    {}
func (IgnoreCommand) isCommand()     {}
