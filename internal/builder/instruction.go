package builder

import (
	"gov-ix-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

// AccountMeta 指令中的一个账户及其读写 / 签名属性
type AccountMeta struct {
	Pubkey     types.Pubkey
	IsSigner   bool
	IsWritable bool
}

func Readonly(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk}
}

func Writable(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsWritable: true}
}

func Signer(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true}
}

func WritableSigner(pk types.Pubkey) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: true, IsWritable: true}
}

// Instruction 构建结果：program + 有序账户 + 数据
type Instruction struct {
	ProgramID types.Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// Keys 按顺序返回账户公钥（用于回送 registry 渲染）
func (ix *Instruction) Keys() []types.Pubkey {
	out := make([]types.Pubkey, len(ix.Accounts))
	for i, a := range ix.Accounts {
		out[i] = a.Pubkey
	}
	return out
}

// ToSDK 转换为 blocto SDK 指令，便于交给交易组装层
func (ix *Instruction) ToSDK() sdktypes.Instruction {
	metas := make([]sdktypes.AccountMeta, len(ix.Accounts))
	for i, a := range ix.Accounts {
		metas[i] = sdktypes.AccountMeta{
			PubKey:     a.Pubkey.Common(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}
	return sdktypes.Instruction{
		ProgramID: common.PublicKey(ix.ProgramID),
		Accounts:  metas,
		Data:      append([]byte(nil), ix.Data...),
	}
}

// FromSDK 从 blocto SDK 指令转换
func FromSDK(in sdktypes.Instruction) Instruction {
	metas := make([]AccountMeta, len(in.Accounts))
	for i, a := range in.Accounts {
		metas[i] = AccountMeta{
			Pubkey:     types.FromCommon(a.PubKey),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}
	return Instruction{
		ProgramID: types.FromCommon(in.ProgramID),
		Accounts:  metas,
		Data:      append([]byte(nil), in.Data...),
	}
}

// Result Builder 的完整输出：主指令、需要先执行的前置指令、额外签名者
type Result struct {
	Instruction   Instruction
	Prerequisites []Instruction
	Signers       []sdktypes.Account
}

// SignerKeys 额外签名者公钥
func (r *Result) SignerKeys() []types.Pubkey {
	out := make([]types.Pubkey, len(r.Signers))
	for i, s := range r.Signers {
		out[i] = types.FromCommon(s.PublicKey)
	}
	return out
}
