package ixerr

import "errors"

// 指令编解码层的错误分类；调用方使用 %w 包装上下文，使用 errors.Is 判断类别。
// 所有错误对当前 build / render 调用都是终止性的，不做重试，也不做默认值替换。
var (
	// ErrMalformedInstructionData 数据长度与 layout 声明宽度不一致（解码路径）
	ErrMalformedInstructionData = errors.New("malformed instruction data")

	// ErrValueOutOfRange 数值超出字段声明位宽（编码路径）
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrUnknownInstruction (programId, opcode) 未注册
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrAccountListTooShort 账户数少于声明的角色数
	ErrAccountListTooShort = errors.New("account list too short")

	// ErrDependencyLookupFailed 外部读取失败（mint decimals、token account 等）
	ErrDependencyLookupFailed = errors.New("dependency lookup failed")

	// ErrDependencyNotFound 依赖对象不存在（池子、市场、链上账户）
	ErrDependencyNotFound = errors.New("dependency not found")

	// ErrInvalidParameter 输入违反业务约束（如滑点不在 [0,100]）
	ErrInvalidParameter = errors.New("invalid parameter")
)
