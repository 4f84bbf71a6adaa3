package ledger

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"lukechampine.com/blake3"

	"creekbot/crypto"
)

// intentDomain is prepended to the canonical intent bytes before hashing so
// transaction digests cannot collide with other signed payloads.
var intentDomain = []byte("creek-tx-v1:")

// InputKind tags how an intent input is resolved by the node.
type InputKind string

const (
	InputOwnedObject  InputKind = "ownedObject"
	InputSharedObject InputKind = "sharedObject"
	InputPure         InputKind = "pure"
)

// Input is one value consumed by the intent's commands.
type Input struct {
	Kind   InputKind  `json:"kind"`
	Object *ObjectRef `json:"object,omitempty"`
	Shared string     `json:"shared,omitempty"`
	Value  string     `json:"value,omitempty"`
	Type   string     `json:"type,omitempty"`
}

// Arg references an input, a prior command's result, or the gas coin.
type Arg struct {
	Input   *int `json:"input,omitempty"`
	Result  *int `json:"result,omitempty"`
	GasCoin bool `json:"gasCoin,omitempty"`
}

// CommandKind tags the operation a command performs.
type CommandKind string

const (
	CommandMergeCoins CommandKind = "mergeCoins"
	CommandSplitCoin  CommandKind = "splitCoin"
	CommandMoveCall   CommandKind = "moveCall"
)

// Command is one step of an intent. Commands execute in order and may
// consume results of earlier commands.
type Command struct {
	Kind          CommandKind `json:"kind"`
	Target        string      `json:"target,omitempty"`
	TypeArguments []string    `json:"typeArguments,omitempty"`
	Arguments     []Arg       `json:"arguments"`
}

// Intent is a fully built, not yet signed, multi-command transaction. It is
// owned exclusively by the building routine until handed to the submitter.
type Intent struct {
	Sender   string    `json:"sender"`
	Inputs   []Input   `json:"inputs"`
	Commands []Command `json:"commands"`
}

// Builder assembles an Intent. It performs no network interaction: building
// either completes fully or the caller abandons the builder.
type Builder struct {
	intent Intent
}

// NewBuilder starts an intent for the given sender address.
func NewBuilder(sender crypto.Address) *Builder {
	return &Builder{intent: Intent{Sender: sender.String()}}
}

func (b *Builder) addInput(in Input) Arg {
	b.intent.Inputs = append(b.intent.Inputs, in)
	idx := len(b.intent.Inputs) - 1
	return Arg{Input: &idx}
}

// Object adds an exclusively owned object pinned to an exact version.
func (b *Builder) Object(ref ObjectRef) Arg {
	r := ref
	return b.addInput(Input{Kind: InputOwnedObject, Object: &r})
}

// SharedObject adds a shared object referenced by id only; the node resolves
// the current version at execution time.
func (b *Builder) SharedObject(id string) Arg {
	return b.addInput(Input{Kind: InputSharedObject, Shared: id})
}

// PureU64 adds an unsigned integer argument.
func (b *Builder) PureU64(v *big.Int) Arg {
	return b.addInput(Input{Kind: InputPure, Value: v.String(), Type: "u64"})
}

// PureAddress adds an address argument.
func (b *Builder) PureAddress(addr string) Arg {
	return b.addInput(Input{Kind: InputPure, Value: addr, Type: "address"})
}

// GasCoin references the transaction's gas payment coin. Used when spending
// the native asset, which doubles as gas.
func (b *Builder) GasCoin() Arg {
	return Arg{GasCoin: true}
}

func (b *Builder) addCommand(cmd Command) Arg {
	b.intent.Commands = append(b.intent.Commands, cmd)
	idx := len(b.intent.Commands) - 1
	return Arg{Result: &idx}
}

// MergeCoins folds the source coins into the destination coin.
func (b *Builder) MergeCoins(destination Arg, sources []Arg) {
	b.addCommand(Command{
		Kind:      CommandMergeCoins,
		Arguments: append([]Arg{destination}, sources...),
	})
}

// SplitCoin carves an exact amount off a coin, returning the new coin.
func (b *Builder) SplitCoin(coin Arg, amount Arg) Arg {
	return b.addCommand(Command{
		Kind:      CommandSplitCoin,
		Arguments: []Arg{coin, amount},
	})
}

// MoveCall invokes an on-chain entry point. The returned Arg is the call's
// result handle and may be threaded into later commands.
func (b *Builder) MoveCall(target string, typeArguments []string, args ...Arg) Arg {
	return b.addCommand(Command{
		Kind:          CommandMoveCall,
		Target:        target,
		TypeArguments: typeArguments,
		Arguments:     args,
	})
}

// Intent returns the assembled intent.
func (b *Builder) Intent() *Intent {
	return &b.intent
}

// SignedTransaction is an intent serialized and signed, ready to submit.
type SignedTransaction struct {
	TxBytes   string
	Signature string
	Digest    string
}

// Sign canonically encodes the intent, hashes it into the transaction
// digest, and signs the digest with the account key.
func (in *Intent) Sign(key *crypto.PrivateKey) (*SignedTransaction, error) {
	if key == nil {
		return nil, fmt.Errorf("signing key required")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode intent: %w", err)
	}
	digest := blake3.Sum256(append(intentDomain, payload...))
	signature, err := key.Sign(digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign intent: %w", err)
	}
	return &SignedTransaction{
		TxBytes:   base64.StdEncoding.EncodeToString(payload),
		Signature: hex.EncodeToString(signature),
		Digest:    hex.EncodeToString(digest[:]),
	}, nil
}
