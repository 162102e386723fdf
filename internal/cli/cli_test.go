package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"gov-ix-sol/internal/chain"
	"gov-ix-sol/internal/consts"
	"gov-ix-sol/internal/pda"
	"gov-ix-sol/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	authority = types.PubkeyFromBase58("DtnAPKSHwJaYbFdjYibNcjxihVd6pK1agpT86N5tMVPX")
	receiver  = types.PubkeyFromBase58("EWiQLJY2CYKKL58KR284MxLvEtctQJbnzKEqWXyQ1z3S")
)

func run(t *testing.T, reader chain.Reader, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	opts := &RootOptions{Reader: reader}
	cmd := newRootCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", ""}, args...))
	err := execute(opts, cmd)
	return buf.String(), err
}

func usdcReader() *chain.MemoryReader {
	r := chain.NewMemoryReader()
	r.PutMint(consts.USDCMint, 6, 1_000_000_000_000)
	source, _ := pda.AssociatedTokenAddress(authority, consts.USDCMint)
	r.PutTokenAccount(source, consts.USDCMint, authority, 100_000_000)
	return r
}

func TestActionsCommand(t *testing.T) {
	out, err := run(t, usdcReader(), "actions")
	require.NoError(t, err)
	assert.Contains(t, out, "spl-token.transfer")
	assert.Contains(t, out, "form: mint, to, amount")
	assert.Contains(t, out, "tribeca.cast-vote")
}

func TestActionsCommandJSON(t *testing.T) {
	out, err := run(t, usdcReader(), "--format", "json", "actions")
	require.NoError(t, err)

	var views []actionView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.NotEmpty(t, views)
	for _, v := range views {
		assert.NotEmpty(t, v.ID)
	}
}

func TestBuildCommand(t *testing.T) {
	out, err := run(t, usdcReader(), "build", "spl-token.transfer",
		"--authority", authority.String(),
		"--form", "mint="+consts.USDCMintStr,
		"--form", "to="+receiver.String(),
		"--form", "amount=12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 AssociatedToken")
	assert.Contains(t, out, "#2 SplToken")
	assert.Contains(t, out, "Amount: 12.5")
	assert.Contains(t, out, "data: 0c20bcbe000000000006")
}

func TestBuildCommandJSON(t *testing.T) {
	out, err := run(t, usdcReader(), "--format", "json", "build", "spl-token.transfer",
		"--authority", authority.String(),
		"--form", "mint="+consts.USDCMintStr,
		"--form", "to="+receiver.String(),
		"--form", "amount=1")
	require.NoError(t, err)

	var view buildView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, authority.String(), view.Payer)
	require.Len(t, view.Instructions, 2)
	assert.Equal(t, consts.TokenProgram.String(), view.Instructions[1].ProgramID)
	assert.False(t, view.Published)
}

func TestBuildCommandRejects(t *testing.T) {
	_, err := run(t, usdcReader(), "build", "spl-token.transfer", "--authority", authority.String(), "--form", "amount")
	assert.ErrorContains(t, err, "key=value")

	_, err = run(t, usdcReader(), "build", "spl-token.transfer", "--authority", "not-a-key")
	assert.ErrorContains(t, err, "--authority")

	_, err = run(t, usdcReader(), "build", "spl-token.transfer", "--authority", authority.String(), "--publish")
	assert.ErrorContains(t, err, "--request-id")

	// 未配置 Kafka 时投递被拒绝
	_, err = run(t, usdcReader(), "build", "spl-token.transfer",
		"--authority", authority.String(),
		"--form", "mint="+consts.USDCMintStr,
		"--form", "to="+receiver.String(),
		"--form", "amount=1",
		"--publish", "--request-id", "r1")
	assert.ErrorContains(t, err, "handoff disabled")
}

func TestRenderCommand(t *testing.T) {
	src := types.PubkeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	out, err := run(t, usdcReader(), "render",
		"--program", consts.TokenProgram.String(),
		"--data", "0c20bcbe000000000006",
		"--account", src.String(),
		"--account", consts.USDCMintStr,
		"--account", receiver.String(),
		"--account", authority.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Amount: 12.5")
}

func TestRenderCommandFailsClosed(t *testing.T) {
	r := chain.NewMemoryReader()
	_, err := run(t, r, "render",
		"--program", consts.TokenProgram.String(),
		"--data", "0c20bcbe000000000006",
		"--account", receiver.String(),
		"--account", consts.USDCMintStr,
		"--account", receiver.String(),
		"--account", authority.String())
	assert.ErrorContains(t, err, "dependency lookup failed")
}

func TestRenderCommandUnknown(t *testing.T) {
	_, err := run(t, usdcReader(), "render", "--program", receiver.String(), "--data", "0102")
	assert.ErrorContains(t, err, "unknown instruction")

	out, err := run(t, usdcReader(), "render", "--program", receiver.String(), "--data", "0102", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "Data: 0102")
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, usdcReader(), "--format", "xml", "actions")
	assert.ErrorContains(t, err, "invalid format")
}

// 子命令失败时 cobra 跳过 PostRun，服务上下文必须由 execute 释放
func TestExecuteClosesServiceOnError(t *testing.T) {
	args := []string{"--config", "", "build", "spl-token.transfer",
		"--authority", authority.String(),
		"--form", "mint=" + consts.USDCMintStr,
		"--form", "to=" + receiver.String(),
		"--form", "amount=1000"}

	opts := &RootOptions{Reader: usdcReader()}
	cmd := newRootCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.Error(t, cmd.Execute())
	require.NotNil(t, opts.sc)
	opts.Close()
	assert.Nil(t, opts.sc)
	opts.Close()

	opts = &RootOptions{Reader: usdcReader()}
	cmd = newRootCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	assert.ErrorContains(t, execute(opts, cmd), "exceeds balance")
	assert.Nil(t, opts.sc)
}
