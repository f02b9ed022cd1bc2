package monitor

import (
	"context"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jsoniter "github.com/json-iterator/go"

	"raptor/internal/solana"
	"raptor/pkg/errkind"
	"raptor/pkg/logging"
	"raptor/pkg/retry"
)

// json is the hot-path WS-envelope decoder: every logsNotification frame
// on the subscription goes through this, so it uses the same
// faster-than-stdlib codec internal/store/strategy.go already wires in.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// logsNotification is the subset of Solana's logsNotification payload the
// monitor needs (spec.md §6: "logsNotification yields {signature, err,
// logs}").
type logsNotification struct {
	Params struct {
		Result struct {
			Value struct {
				Signature string   `json:"signature"`
				Err       interface{} `json:"err"`
				Logs      []string `json:"logs"`
			} `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// createInstructionMarker is the human-readable log line pump.fun-family
// programs emit for a create, used as the cheap first-pass filter before
// the authoritative discriminator check (spec.md §4.1 step 2).
const createInstructionMarker = "Instruction: Create"

func looksLikeCreate(logs []string) bool {
	for _, line := range logs {
		if len(line) >= len(createInstructionMarker) &&
			containsSubstring(line, createInstructionMarker) {
			return true
		}
	}
	return false
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// Handler is invoked for every successfully decoded CreateEvent. Per
// spec.md §4.1 "handlers are awaited and their errors logged but do not
// propagate", Decoder itself enforces that contract around the call.
type Handler func(ctx context.Context, event solana.CreateEvent) error

// Decoder fetches and decodes transactions behind matched log
// notifications, turning a raw WS frame stream into CreateEvents.
type Decoder struct {
	programID solanago.PublicKey
	rpcClient *rpc.Client
	layout    solana.AccountLayout
	discs     [][solana.DiscriminatorLen]byte
	log       *logging.Logger
	handlers  []Handler
}

// NewDecoder builds a decoder for one program id against the given RPC
// client and account layout.
func NewDecoder(programID solanago.PublicKey, rpcClient *rpc.Client, layout solana.AccountLayout, log *logging.Logger) *Decoder {
	return &Decoder{
		programID: programID,
		rpcClient: rpcClient,
		layout:    layout,
		discs:     solana.KnownCreateDiscriminators(),
		log:       log,
	}
}

// RegisterHandler adds a CreateEvent consumer.
func (d *Decoder) RegisterHandler(h Handler) {
	d.handlers = append(d.handlers, h)
}

// HandleFrame is wired as the WSClient's onMessage callback. It parses the
// frame, skips failed/unrelated notifications, and on a plausible create
// dispatches the (slower) transaction fetch+decode asynchronously so the
// read pump is never blocked (spec.md §4.1: socket errors are recoverable,
// nothing here blocks the subscription loop).
func (d *Decoder) HandleFrame(ctx context.Context, raw []byte) {
	var note logsNotification
	if err := json.Unmarshal(raw, &note); err != nil {
		return
	}
	v := note.Params.Result.Value
	if v.Err != nil || v.Signature == "" {
		return
	}
	if !looksLikeCreate(v.Logs) {
		return
	}

	go d.processSignature(ctx, v.Signature)
}

// processSignature fetches and decodes the transaction behind a matched
// signature, retrying transient fetch failures up to three times (spec.md
// §4.1 step 3/"Reliability": "Retry transaction fetch up to three times on
// transient failure; a bad decode yields a warning and is dropped").
func (d *Decoder) processSignature(ctx context.Context, signature string) {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return
	}

	maxVersion := uint64(0)
	var tx *rpc.GetTransactionResult

	policy := retry.ClassifiedPolicy(string(errkind.RPCTimeout))
	err = retry.Do(ctx, func() error {
		var fetchErr error
		tx, fetchErr = d.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
			Commitment:                     rpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		return fetchErr
	}, policy)
	if err != nil || tx == nil || tx.Meta == nil || tx.Meta.Err != nil {
		if err != nil && d.log != nil {
			d.log.Warn("monitor: transaction fetch failed, dropping", logging.TxSignature(signature), logging.Err(err))
		}
		return
	}

	event, err := d.decodeTransaction(signature, tx)
	if err != nil {
		if d.log != nil {
			d.log.Warn("monitor: decode failed, dropping", logging.TxSignature(signature), logging.Err(err))
		}
		return
	}
	if event == nil {
		return
	}

	d.dispatch(ctx, *event)
}

func (d *Decoder) dispatch(ctx context.Context, event solana.CreateEvent) {
	for _, h := range d.handlers {
		if err := h(ctx, event); err != nil && d.log != nil {
			d.log.Warn("monitor: handler error", logging.Mint(event.Mint.String()), logging.Err(err))
		}
	}
}

// decodeTransaction walks the compiled top-level instructions, matching
// the target program id and a known create discriminator. Inner (CPI)
// instructions are not searched, so a create issued via CPI is not found.
func (d *Decoder) decodeTransaction(signature string, tx *rpc.GetTransactionResult) (*solana.CreateEvent, error) {
	decoded, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountList(decoded.Message.AccountKeys, solana.LoadedAddresses{
		Writable: tx.Meta.LoadedAddresses.Writable,
		Readonly: tx.Meta.LoadedAddresses.Readonly,
	})

	for _, ix := range decoded.Message.Instructions {
		programIdx := int(ix.ProgramIDIndex)
		progKey, ok := solana.AccountAt(accounts, programIdx)
		if !ok || !progKey.Equals(d.programID) {
			continue
		}

		data := []byte(ix.Data)
		if !solana.MatchesDiscriminator(data, d.discs...) {
			continue
		}

		name, symbol, uri, err := solana.DecodeCreatePayload(data)
		if err != nil {
			return nil, err
		}

		indexes := make([]uint16, len(ix.Accounts))
		for i, a := range ix.Accounts {
			indexes[i] = uint16(a)
		}

		mint, bondingCurve, creator, err := solana.DecodeCreateAccounts(accounts, indexes, d.layout)
		if err != nil {
			return nil, err
		}

		ts := time.Now()
		if tx.BlockTime != nil {
			ts = time.Unix(int64(*tx.BlockTime), 0)
		}

		return &solana.CreateEvent{
			Signature:    signature,
			Slot:         tx.Slot,
			Mint:         mint,
			Name:         name,
			Symbol:       symbol,
			URI:          uri,
			BondingCurve: bondingCurve,
			Creator:      creator,
			Timestamp:    ts,
		}, nil
	}

	return nil, nil
}
