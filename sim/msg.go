package sim

// A Msg is what travels between ports: a bus request or the response to it.
type Msg interface {
	Meta() *MsgMeta
}

// MsgMeta is carried by every message. TrafficBytes is the size of the
// message on the bus, header included.
type MsgMeta struct {
	ID           string
	Src, Dst     RemotePort
	TrafficBytes int
}

// Rsp answers the request whose ID GetRspTo returns.
type Rsp interface {
	Msg
	GetRspTo() string
}
