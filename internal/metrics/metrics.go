package metrics

const (
	FailureAuth      = "auth"
	FailureToken     = "token"
	FailureTransport = "transport"
	FailureProtocol  = "protocol"
	FailureServer    = "server"
)

type Recorder interface {
	ConnectAttempt()
	Connected()
	FrameSent(bytes int)
	FrameDropped()
	ResultsMerged(count int)
	Failure(kind string)
}

type Noop struct{}

func (Noop) ConnectAttempt()   {}
func (Noop) Connected()        {}
func (Noop) FrameSent(int)     {}
func (Noop) FrameDropped()     {}
func (Noop) ResultsMerged(int) {}
func (Noop) Failure(string)    {}
