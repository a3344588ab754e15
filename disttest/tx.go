package disttest

import "github.com/iov-one/tokendist"

// Tx carries Msg. GetMsg returns Err along with it. Serialization is not
// supported.
type Tx struct {
	Msg tokendist.Msg
	Err error
}

var _ tokendist.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (tokendist.Msg, error) { return tx.Msg, tx.Err }

func (tx *Tx) Marshal() ([]byte, error) { panic("disttest.Tx cannot be serialized") }

func (tx *Tx) Unmarshal([]byte) error { panic("disttest.Tx cannot be serialized") }

// Msg is routed by RoutePath and fails validation with Err.
type Msg struct {
	RoutePath string
	Err       error
}

var _ tokendist.Msg = (*Msg)(nil)

func (m *Msg) Path() string { return m.RoutePath }

func (m *Msg) Validate() error { return m.Err }

// Marshal serializes the route only.
func (m *Msg) Marshal() ([]byte, error) { return []byte(m.RoutePath), m.Err }

func (m *Msg) Unmarshal(raw []byte) error {
	m.RoutePath = string(raw)
	return m.Err
}
