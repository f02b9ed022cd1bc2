package monitor

import (
	"context"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"raptor/internal/solana"
	"raptor/pkg/logging"
)

// Monitor runs one WSClient/Decoder pair for a single launchpad program id
// (spec.md §4.1: "One monitor per launchpad program id").
type Monitor struct {
	programID solanago.PublicKey
	ws        *WSClient
	decoder   *Decoder
	log       *logging.Logger
}

// New builds a Monitor watching programID's create instructions over wsURL,
// fetching matched transactions through rpcClient.
func New(programID solanago.PublicKey, wsURL string, rpcClient *rpc.Client, layout solana.AccountLayout, log *logging.Logger) *Monitor {
	ws := NewWSClient(programID.String(), wsURL, DefaultReconnectConfig(), log)
	decoder := NewDecoder(programID, rpcClient, layout, log)

	m := &Monitor{programID: programID, ws: ws, decoder: decoder, log: log}
	ws.SetOnMessage(func(raw []byte) {
		decoder.HandleFrame(context.Background(), raw)
	})
	return m
}

// RegisterHandler adds a CreateEvent consumer; handlers are awaited and
// their errors logged but never propagate into the monitor loop (spec.md
// §4.1 "Outputs").
func (m *Monitor) RegisterHandler(h Handler) {
	m.decoder.RegisterHandler(h)
}

// Start connects and subscribes. The returned error is only a startup
// failure; transient disconnects thereafter are handled internally by the
// reconnect loop.
func (m *Monitor) Start(ctx context.Context) error {
	return m.ws.Connect(ctx)
}

// Stop tears down the socket and halts reconnection.
func (m *Monitor) Stop() error {
	return m.ws.Close()
}

// State reports the current connection state, exposed for health checks.
func (m *Monitor) State() ConnState {
	return m.ws.State()
}
