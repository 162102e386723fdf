package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"gov-ix-sol/internal/registry"
	"gov-ix-sol/internal/svc"
)

type lineView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type accountView struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type instructionView struct {
	Program   string        `json:"program,omitempty"`
	ProgramID string        `json:"programId"`
	Accounts  []accountView `json:"accounts"`
	Data      string        `json:"data"`
	Lines     []lineView    `json:"lines"`
}

type buildView struct {
	Action       string            `json:"action"`
	Authority    string            `json:"authority"`
	Payer        string            `json:"payer"`
	Instructions []instructionView `json:"instructions"`
	Signers      []string          `json:"signers,omitempty"`
	RequestID    string            `json:"requestId,omitempty"`
	Published    bool              `json:"published"`
}

func toLineViews(lines []registry.DisplayLine) []lineView {
	out := make([]lineView, len(lines))
	for i, l := range lines {
		out[i] = lineView{Label: l.Label, Value: l.Value}
	}
	return out
}

func toInstructionView(r svc.RenderedInstruction) instructionView {
	accounts := make([]accountView, len(r.Instruction.Accounts))
	for i, a := range r.Instruction.Accounts {
		accounts[i] = accountView{Pubkey: a.Pubkey.String(), IsSigner: a.IsSigner, IsWritable: a.IsWritable}
	}
	return instructionView{
		Program:   r.Program,
		ProgramID: r.Instruction.ProgramID.String(),
		Accounts:  accounts,
		Data:      hex.EncodeToString(r.Instruction.Data),
		Lines:     toLineViews(r.Lines),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(w io.Writer, indent string, lines []lineView) {
	for _, l := range lines {
		fmt.Fprintf(w, "%s%s: %s\n", indent, l.Label, l.Value)
	}
}

func writeInstruction(w io.Writer, idx int, ix instructionView) {
	name := ix.Program
	if name == "" {
		name = "Unknown"
	}
	fmt.Fprintf(w, "#%d %s (%s)\n", idx, name, ix.ProgramID)
	writeLines(w, "  ", ix.Lines)
	fmt.Fprintf(w, "  accounts:\n")
	for i, a := range ix.Accounts {
		flags := ""
		if a.IsWritable {
			flags += "w"
		}
		if a.IsSigner {
			flags += "s"
		}
		fmt.Fprintf(w, "    %2d %s %s\n", i, a.Pubkey, flags)
	}
	fmt.Fprintf(w, "  data: %s\n", ix.Data)
}

func writeBuild(w io.Writer, v buildView) {
	fmt.Fprintf(w, "action: %s\n", v.Action)
	fmt.Fprintf(w, "authority: %s\n", v.Authority)
	fmt.Fprintf(w, "payer: %s\n", v.Payer)
	for i, ix := range v.Instructions {
		writeInstruction(w, i+1, ix)
	}
	for _, s := range v.Signers {
		fmt.Fprintf(w, "signer: %s\n", s)
	}
	if v.Published {
		fmt.Fprintf(w, "published: %s\n", v.RequestID)
	}
}
