package cli

import (
	"fmt"
	"strings"

	"gov-ix-sol/internal/builder"
	"gov-ix-sol/internal/types"

	"github.com/spf13/cobra"
)

// BuildOptions build 命令参数
type BuildOptions struct {
	*RootOptions
	Authority string
	Payer     string
	Form      []string
	Publish   bool
	RequestID string
}

// NewBuildCommand 构建一个动作的指令（含前置指令），渲染后可选投递
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <action>",
		Short: "Build the instructions of an action for the governed wallet",
		Long: `Build the instructions of an action for the governed wallet.

Form values are passed as key=value pairs; run "ixtool actions" to list
the fields of every action.

Example:
  ixtool build spl-token.transfer --authority <wallet> \
    --form mint=EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v --form to=<wallet> --form amount=12.5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Authority, "authority", "", "governed wallet (base58)")
	cmd.Flags().StringVar(&opts.Payer, "payer", "", "fee / rent payer, defaults to authority")
	cmd.Flags().StringArrayVar(&opts.Form, "form", nil, "form field as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Publish, "publish", false, "publish the result to the handoff topic")
	cmd.Flags().StringVar(&opts.RequestID, "request-id", "", "idempotency key, required with --publish")
	_ = cmd.MarkFlagRequired("authority")

	return cmd
}

func parseForm(pairs []string) (map[string]any, error) {
	form := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --form %q: want key=value", p)
		}
		if _, dup := form[k]; dup {
			return nil, fmt.Errorf("duplicate --form key %q", k)
		}
		form[k] = v
	}
	return form, nil
}

func runBuild(opts *BuildOptions, actionID string, cmd *cobra.Command) error {
	if opts.Publish && opts.RequestID == "" {
		return fmt.Errorf("--request-id is required with --publish")
	}
	authority, err := types.TryPubkeyFromBase58(opts.Authority)
	if err != nil {
		return fmt.Errorf("--authority: %w", err)
	}
	env := &builder.Env{Authority: authority}
	if opts.Payer != "" {
		if env.Payer, err = types.TryPubkeyFromBase58(opts.Payer); err != nil {
			return fmt.Errorf("--payer: %w", err)
		}
	}
	form, err := parseForm(opts.Form)
	if err != nil {
		return err
	}

	sc, err := opts.service()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	res, err := sc.BuildInstruction(ctx, actionID, form, env)
	if err != nil {
		return err
	}
	rendered, err := sc.Preview(ctx, res)
	if err != nil {
		return err
	}

	view := buildView{
		Action:       actionID,
		Authority:    authority.String(),
		Payer:        authority.String(),
		Instructions: make([]instructionView, len(rendered)),
	}
	if !env.Payer.IsZero() {
		view.Payer = env.Payer.String()
	}
	for i, r := range rendered {
		view.Instructions[i] = toInstructionView(r)
	}
	for _, s := range res.SignerKeys() {
		view.Signers = append(view.Signers, s.String())
	}

	if opts.Publish {
		if _, err := sc.Publish(ctx, opts.RequestID, actionID, env, res); err != nil {
			return err
		}
		view.RequestID = opts.RequestID
		view.Published = true
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, view)
	}
	writeBuild(w, view)
	return nil
}
