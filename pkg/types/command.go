package types

// CommandType is the discriminant carried in every input line's "type" field.
type CommandType string

const (
	CommandLoadModel CommandType = "load_model"
	CommandGenerate  CommandType = "generate"
	CommandStatus    CommandType = "status"
	CommandShutdown  CommandType = "shutdown"
)

// Generation defaults applied when a generate command omits a field.
const (
	DefaultMaxTokens         = 1024
	DefaultTemperature       = 0.7
	DefaultTopP              = 0.9
	DefaultRepetitionPenalty = 1.0
)

// Command is one decoded input line. The set of variants is closed:
// LoadModelCommand, GenerateCommand, StatusCommand, ShutdownCommand, UnknownCommand.
type Command interface {
	CommandType() CommandType
	isCommand()
}

// LoadModelCommand asks the daemon to make a model resident.
type LoadModelCommand struct {
	ModelPath string `json:"model_path"`
}

// GenerateCommand streams a completion for Prompt from the resident model.
type GenerateCommand struct {
	Prompt            string  `json:"prompt"`
	MaxTokens         int     `json:"max_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// StatusCommand is a health check.
type StatusCommand struct{}

// ShutdownCommand stops the read loop.
type ShutdownCommand struct{}

// UnknownCommand carries a type tag the daemon does not recognize.
// Name is the raw tag text; empty when the field was absent.
type UnknownCommand struct {
	Name string
}

func (LoadModelCommand) CommandType() CommandType { return CommandLoadModel }
func (GenerateCommand) CommandType() CommandType  { return CommandGenerate }
func (StatusCommand) CommandType() CommandType    { return CommandStatus }
func (ShutdownCommand) CommandType() CommandType  { return CommandShutdown }
func (c UnknownCommand) CommandType() CommandType { return CommandType(c.Name) }

func (LoadModelCommand) isCommand() {}
func (GenerateCommand) isCommand()  {}
func (StatusCommand) isCommand()    {}
func (ShutdownCommand) isCommand()  {}
func (UnknownCommand) isCommand()   {}
