package types

// Response type tags.
const (
	ResponseReady       = "ready"
	ResponseStatus      = "status"
	ResponseError       = "error"
	ResponseShutdown    = "shutdown"
	ResponseToken       = "token"
	ResponseComplete    = "complete"
	ResponsePathError   = "path_error"
	ResponseLoadError   = "load_error"
	ResponseImportError = "import_error"
)

// Fixed human-readable messages.
const (
	MessageReady         = "AI Daemon started and ready"
	MessageShutdown      = "Daemon shutting down"
	MessageComplete      = "Generation finished"
	MessageModelLoaded   = "Model loaded successfully"
	MessageModelCached   = "Model already loaded in daemon"
	MessageNoModelLoaded = "No model loaded"
)

// Response is one output line. Every value encodes to a single JSON object.
type Response interface {
	isResponse()
}

// ReadyResponse is emitted once at startup before any input is read.
type ReadyResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusResponse reports daemon liveness and the resident model.
type StatusResponse struct {
	Type        string  `json:"type"`
	Running     bool    `json:"running"`
	ModelLoaded bool    `json:"model_loaded"`
	ModelPath   *string `json:"model_path"`
}

// ErrorResponse reports a recoverable failure of one command.
type ErrorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ShutdownResponse is the terminal line of an explicit or signalled shutdown.
type ShutdownResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TokenResponse carries one generated token.
type TokenResponse struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// CompleteResponse terminates a successful token stream.
type CompleteResponse struct {
	Type         string `json:"type"`
	Message      string `json:"message"`
	Tokens       int    `json:"tokens"`
	PromptTokens *int   `json:"prompt_tokens,omitempty"`
}

// LoadSuccess is the result of a load_model command that left a model resident.
type LoadSuccess struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Name    string `json:"name"`
	Cached  bool   `json:"cached"`
	Message string `json:"message"`
}

// LoadFailure is the result of a load_model command that changed nothing.
// Type is ResponsePathError or ResponseLoadError.
type LoadFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type"`
}

// ImportError reports that the inference runtime is unavailable at startup.
type ImportError struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

func (ReadyResponse) isResponse()    {}
func (StatusResponse) isResponse()   {}
func (ErrorResponse) isResponse()    {}
func (ShutdownResponse) isResponse() {}
func (TokenResponse) isResponse()    {}
func (CompleteResponse) isResponse() {}
func (LoadSuccess) isResponse()      {}
func (LoadFailure) isResponse()      {}
func (ImportError) isResponse()      {}

// Ready builds the startup response.
func Ready() ReadyResponse { return ReadyResponse{Type: ResponseReady, Message: MessageReady} }

// Shutdown builds the terminal shutdown response.
func Shutdown() ShutdownResponse {
	return ShutdownResponse{Type: ResponseShutdown, Message: MessageShutdown}
}

// Error builds an error response.
func Error(msg string) ErrorResponse { return ErrorResponse{Type: ResponseError, Error: msg} }

// Token builds a token response.
func Token(tok string) TokenResponse { return TokenResponse{Type: ResponseToken, Token: tok} }
