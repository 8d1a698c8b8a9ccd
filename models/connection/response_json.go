package connection

type NoPayload bool

type Message[T any] struct {
	Code    uint8    `json:"code"`
	Payload T        `json:"payload,omitempty"`
	Error   *RespErr `json:"error,omitempty"`
}

const (
	CodePeers uint8 = iota
	CodeHealth
	CodeInvalidRequest
)

func NewMessage[T any](code uint8) Message[T] {
	return Message[T]{Code: code}
}

func (m *Message[T]) AddPayload(payload T) {
	m.Payload = payload
}

func (m *Message[T]) AddError(errorDetails, message string) {
	m.Error = NewRespErr(errorDetails, message)
}

// A game waiting for player 2, as listed during discovery.
type RespPeer struct {
	GameUuid    string `json:"game_uuid"`
	DisplayName string `json:"display_name"`
}

type RespHealth struct {
	Ok       bool `json:"ok"`
	Sessions int  `json:"sessions"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
