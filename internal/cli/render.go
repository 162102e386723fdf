package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/types"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

// RenderOptions render 命令参数
type RenderOptions struct {
	*RootOptions
	Program  string
	Data     string
	Encoding string
	Accounts []string
	Raw      bool
}

// NewRenderCommand 把一条原始指令渲染为可读的行
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a raw instruction as human readable lines",
		Long: `Render a raw instruction as human readable lines.

Amounts are scaled with the decimals of their mint; if a mint cannot be
read the command fails instead of guessing.

Example:
  ixtool render --program TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA \
    --data 0c20bcbe000000000006 --account <src> --account <mint> --account <dst> --account <owner>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Program, "program", "", "program id (base58)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "instruction data")
	cmd.Flags().StringVar(&opts.Encoding, "encoding", "hex", "data encoding (hex|base58)")
	cmd.Flags().StringArrayVar(&opts.Accounts, "account", nil, "instruction account in order (repeatable)")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "fall back to a raw dump for unknown instructions")
	_ = cmd.MarkFlagRequired("program")

	return cmd
}

func decodeData(s, encoding string) ([]byte, error) {
	switch encoding {
	case "hex":
		return hex.DecodeString(strings.TrimPrefix(s, "0x"))
	case "base58":
		return base58.Decode(s)
	default:
		return nil, fmt.Errorf("invalid encoding %q: must be hex or base58", encoding)
	}
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	program, err := types.TryPubkeyFromBase58(opts.Program)
	if err != nil {
		return fmt.Errorf("--program: %w", err)
	}
	data, err := decodeData(opts.Data, opts.Encoding)
	if err != nil {
		return fmt.Errorf("--data: %w", err)
	}
	accounts := make([]types.Pubkey, len(opts.Accounts))
	for i, a := range opts.Accounts {
		if accounts[i], err = types.TryPubkeyFromBase58(a); err != nil {
			return fmt.Errorf("--account #%d: %w", i, err)
		}
	}

	sc, err := opts.service()
	if err != nil {
		return err
	}
	lines, err := sc.RenderInstruction(cmd.Context(), program, data, accounts)
	var unknown *registry.UnknownInstructionError
	if opts.Raw && errors.As(err, &unknown) {
		lines, err = unknown.Dump(), nil
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	views := toLineViews(lines)
	if opts.Format == "json" {
		return writeJSON(w, views)
	}
	writeLines(w, "", views)
	return nil
}
