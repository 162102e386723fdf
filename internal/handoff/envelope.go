package handoff

import (
	"fmt"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/types"

	"github.com/near/borsh-go"
)

const envelopeVersion uint8 = 1

type WireAccount struct {
	Pubkey     [32]byte
	IsSigner   bool
	IsWritable bool
}

type WireInstruction struct {
	ProgramID [32]byte
	Accounts  []WireAccount
	Data      []byte
}

// Envelope 交给提案组装层的消息体（borsh 编码）。
// Instructions 按执行顺序排列：前置指令在前，主指令最后。
// Signers 只携带额外签名者的公钥，私钥不离开本进程
type Envelope struct {
	Version      uint8
	RequestID    string
	Action       string
	Authority    [32]byte
	Payer        [32]byte
	Instructions []WireInstruction
	Signers      [][32]byte
	CreatedAt    int64
}

func toWire(ix *builder.Instruction) WireInstruction {
	accounts := make([]WireAccount, len(ix.Accounts))
	for i, a := range ix.Accounts {
		accounts[i] = WireAccount{Pubkey: a.Pubkey, IsSigner: a.IsSigner, IsWritable: a.IsWritable}
	}
	return WireInstruction{
		ProgramID: ix.ProgramID,
		Accounts:  accounts,
		Data:      append([]byte{}, ix.Data...),
	}
}

// NewEnvelope 由构建结果生成消息体
func NewEnvelope(requestID, action string, env *builder.Env, res *builder.Result, createdAt int64) *Envelope {
	out := &Envelope{
		Version:      envelopeVersion,
		RequestID:    requestID,
		Action:       action,
		Authority:    env.Authority,
		Payer:        env.Payer,
		Instructions: make([]WireInstruction, 0, len(res.Prerequisites)+1),
		Signers:      make([][32]byte, 0, len(res.Signers)),
		CreatedAt:    createdAt,
	}
	for i := range res.Prerequisites {
		out.Instructions = append(out.Instructions, toWire(&res.Prerequisites[i]))
	}
	out.Instructions = append(out.Instructions, toWire(&res.Instruction))
	for _, pk := range res.SignerKeys() {
		out.Signers = append(out.Signers, pk)
	}
	return out
}

// BuilderInstructions 还原为 builder.Instruction（消费端使用）
func (e *Envelope) BuilderInstructions() []builder.Instruction {
	out := make([]builder.Instruction, len(e.Instructions))
	for i, w := range e.Instructions {
		metas := make([]builder.AccountMeta, len(w.Accounts))
		for j, a := range w.Accounts {
			metas[j] = builder.AccountMeta{Pubkey: types.Pubkey(a.Pubkey), IsSigner: a.IsSigner, IsWritable: a.IsWritable}
		}
		out[i] = builder.Instruction{ProgramID: types.Pubkey(w.ProgramID), Accounts: metas, Data: w.Data}
	}
	return out
}

func (e *Envelope) Encode() ([]byte, error) {
	return borsh.Serialize(*e)
}

func DecodeEnvelope(data []byte) (env *Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("envelope borsh decode panic: %v", r)
		}
	}()
	out := new(Envelope)
	if err := borsh.Deserialize(out, data); err != nil {
		return nil, fmt.Errorf("envelope decode: %w", err)
	}
	if out.Version != envelopeVersion {
		return nil, fmt.Errorf("envelope version %d not supported", out.Version)
	}
	return out, nil
}
