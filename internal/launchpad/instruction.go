package launchpad

import (
	"encoding/binary"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"

	"raptor/internal/router"
	"raptor/internal/solana"
)

// instructionData encodes the Anchor buy/sell instruction payload: an
// 8-byte discriminator, the token amount, and a slippage-bounded SOL
// limit (max cost for a buy, min output for a sell), per spec.md §4.3
// step 2's "buy(amount, max_sol_cost)" / "sell(amount, min_sol_output)".
func instructionData(quote *router.SwapQuote) ([]byte, error) {
	buf := make([]byte, solana.DiscriminatorLen+16)

	switch quote.Intent.Side {
	case router.SideBuy:
		disc := solana.Discriminator("buy")
		copy(buf[:solana.DiscriminatorLen], disc[:])

		amountTokens := uint64(quote.TokensOut * tokenScale)
		lamportsIn := uint64(quote.Intent.AmountSol * 1e9)
		maxSolCost := lamportsIn * uint64(slippageDenominatorBps+quote.Intent.SlippageBps) / slippageDenominatorBps

		binary.LittleEndian.PutUint64(buf[solana.DiscriminatorLen:solana.DiscriminatorLen+8], amountTokens)
		binary.LittleEndian.PutUint64(buf[solana.DiscriminatorLen+8:], maxSolCost)

	case router.SideSell:
		disc := solana.Discriminator("sell")
		copy(buf[:solana.DiscriminatorLen], disc[:])

		amountTokens := uint64(quote.Intent.SizeTokens * tokenScale)
		bound := slippageDenominatorBps - quote.Intent.SlippageBps
		if bound < 0 {
			bound = 0
		}
		minSolOutput := quote.LamportsOut * uint64(bound) / slippageDenominatorBps

		binary.LittleEndian.PutUint64(buf[solana.DiscriminatorLen:solana.DiscriminatorLen+8], amountTokens)
		binary.LittleEndian.PutUint64(buf[solana.DiscriminatorLen+8:], minSolOutput)

	default:
		return nil, fmt.Errorf("launchpad: unknown side %q", quote.Intent.Side)
	}

	return buf, nil
}

// swapAccounts is the fixed pump.fun buy/sell account set (program-id
// ordering per its published IDL; see DESIGN.md).
type swapAccounts struct {
	payer          solanago.PublicKey
	feeRecipient   solanago.PublicKey
	bondingCurve   solanago.PublicKey
	assocCurve     solanago.PublicKey
	assocUser      solanago.PublicKey
	global         solanago.PublicKey
	mint           solanago.PublicKey
	systemProgram  solanago.PublicKey
	tokenProgram   solanago.PublicKey
	rent           solanago.PublicKey
	eventAuthority solanago.PublicKey
	program        solanago.PublicKey
}

// numReadonlyUnsigned is how many of orderedKeys' trailing entries are
// readonly, non-signer accounts (global through program, inclusive).
const numReadonlyUnsigned = 7

// orderedKeys lays out accounts [writable signer][writable][readonly],
// the order a legacy Solana message's header counts require; there are
// no readonly-signer accounts in this instruction.
func (a swapAccounts) orderedKeys() []solanago.PublicKey {
	return []solanago.PublicKey{
		a.payer,          // 0: writable, signer
		a.feeRecipient,   // 1: writable
		a.bondingCurve,   // 2: writable
		a.assocCurve,     // 3: writable
		a.assocUser,      // 4: writable
		a.global,         // 5: readonly
		a.mint,           // 6: readonly
		a.systemProgram,  // 7: readonly
		a.tokenProgram,   // 8: readonly
		a.rent,           // 9: readonly
		a.eventAuthority, // 10: readonly
		a.program,        // 11: readonly
	}
}

// buildMessage assembles a legacy Solana message's wire bytes (header,
// shortvec account list, recent blockhash, shortvec compiled-instruction
// list) for a single instruction against this account set and data.
func (a swapAccounts) buildMessage(data []byte, blockhash [32]byte) []byte {
	keys := a.orderedKeys()
	programIdx := byte(len(keys) - 1)

	accountIdxs := make([]byte, len(keys)-1)
	for i := range accountIdxs {
		accountIdxs[i] = byte(i)
	}

	var out []byte
	out = append(out, 1, 0, numReadonlyUnsigned) // header: 1 signer, 0 readonly-signed, 7 readonly-unsigned
	out = append(out, solana.EncodeShortVec(len(keys))...)
	for _, pk := range keys {
		out = append(out, pk[:]...)
	}
	out = append(out, blockhash[:]...)
	out = append(out, solana.EncodeShortVec(1)...) // one instruction
	out = append(out, programIdx)
	out = append(out, solana.EncodeShortVec(len(accountIdxs))...)
	out = append(out, accountIdxs...)
	out = append(out, solana.EncodeShortVec(len(data))...)
	out = append(out, data...)
	return out
}
