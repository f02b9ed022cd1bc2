// Package launchpad encodes pump.fun-family bonding-curve buy/sell
// instructions, implementing router.TxBuilder without depending on any
// solana-go Message-builder API this module pack doesn't evidence: the
// legacy message wire format is assembled by hand, the same way
// internal/solana already hand-decodes create-instruction and
// bonding-curve account payloads (spec.md §6).
package launchpad

import solanago "github.com/gagliardetto/solana-go"

// Publicly known pump.fun program and account addresses. Unlike
// internal/solana's decode primitives, this account set and the
// instruction layout in instruction.go are this package's own
// best-effort reading of pump.fun's published IDL — no pack example
// evidences it; see DESIGN.md for the caveat.
var (
	ProgramID      = solanago.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	GlobalAccount  = solanago.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	FeeRecipient   = solanago.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	EventAuthority = solanago.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	RentSysvar     = solanago.MustPublicKeyFromBase58("SysvarRent111111111111111111111111111111111")
)

// TokenDecimals is the SPL decimals every pump.fun-launched mint uses.
const TokenDecimals = 6

const tokenScale = 1_000_000 // 10^TokenDecimals

const slippageDenominatorBps = 10_000
