package bankaccount

// Command is the tagged-variant interface mirroring the five
// operations an account supports.
type Command interface {
	// AccountID returns the aggregate this command targets.
	AccountID() ID
	isCommand()
}

type commandBase struct {
	ID ID
}

// AccountID returns the aggregate this command targets.
func (c commandBase) AccountID() ID { return c.ID }

func (commandBase) isCommand() {}

// Open requests the creation of a new account with the given name.
type Open struct {
	commandBase
	Name Name
}

// NewOpen constructs an Open command.
func NewOpen(id ID, name Name) Open {
	return Open{commandBase: commandBase{ID: id}, Name: name}
}

// Update requests renaming an existing account.
type Update struct {
	commandBase
	Name Name
}

// NewUpdate constructs an Update command.
func NewUpdate(id ID, name Name) Update {
	return Update{commandBase: commandBase{ID: id}, Name: name}
}

// Deposit requests adding funds to an account.
type Deposit struct {
	commandBase
	Amount int32
}

// NewDeposit constructs a Deposit command.
func NewDeposit(id ID, amount int32) Deposit {
	return Deposit{commandBase: commandBase{ID: id}, Amount: amount}
}

// Withdraw requests removing funds from an account.
type Withdraw struct {
	commandBase
	Amount int32
}

// NewWithdraw constructs a Withdraw command.
func NewWithdraw(id ID, amount int32) Withdraw {
	return Withdraw{commandBase: commandBase{ID: id}, Amount: amount}
}

// Close requests closing an account.
type Close struct {
	commandBase
}

// NewClose constructs a Close command.
func NewClose(id ID) Close {
	return Close{commandBase: commandBase{ID: id}}
}
