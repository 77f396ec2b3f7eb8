package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obsplane/observer/internal/analysis"
	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/proposal"
)

func newProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Manage parameter change proposals",
	}
	cmd.AddCommand(
		newProposalGenerateCmd(),
		newProposalListCmd(),
		newProposalShowCmd(),
		newProposalApproveCmd(),
		newProposalRejectCmd(),
	)
	return cmd
}

func proposalEngine(h *hub.Hub) (*proposal.Engine, error) {
	params, err := h.LatestParameters()
	if err != nil {
		return nil, err
	}
	return proposal.NewEngine(h, analysis.ConfigFromParameters(params)), nil
}

func newProposalGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Run analysis and generate a proposal from its findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			params, err := h.LatestParameters()
			if err != nil {
				return err
			}
			cfg := analysis.ConfigFromParameters(params)

			agent := analysis.NewAgent(h, cfg)
			result := agent.Run()
			if !result.Success {
				return fmt.Errorf("analysis failed: %s", result.Err)
			}

			engine := proposal.NewEngine(h, cfg)
			p, err := engine.Generate(result.Findings, result.ReportFilename)
			if err != nil {
				return err
			}
			if p == nil {
				cmd.Println("No rules matched the current findings. Nothing to propose.")
				return nil
			}

			cmd.Printf("Proposal generated: %s\n", p.ProposalID)
			cmd.Printf("  Impact:  %s\n", p.ImpactLevel)
			cmd.Printf("  Version: %s -> %s\n", p.VersionFrom, p.VersionTo)
			cmd.Printf("  Changes: %d\n", len(p.ParameterDiffs))
			for _, d := range p.ParameterDiffs {
				cmd.Printf("    - %s: %v -> %v\n", d.Path, d.OldValue, d.NewValue)
			}
			return nil
		},
	}
}

func newProposalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all proposals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			engine, err := proposalEngine(h)
			if err != nil {
				return err
			}
			proposals, err := engine.ListAll()
			if err != nil {
				return err
			}
			if len(proposals) == 0 {
				cmd.Println("No proposals yet.")
				return nil
			}

			cmd.Printf("%-32s %-10s %-8s %-16s %s\n",
				"PROPOSAL ID", "STATUS", "IMPACT", "VERSION", "CHANGES")
			for _, p := range proposals {
				cmd.Printf("%-32s %-10s %-8s %-16s %d\n",
					p.ProposalID, p.Status, p.ImpactLevel,
					fmt.Sprintf("%s->%s", p.VersionFrom, p.VersionTo),
					len(p.ParameterDiffs))
			}
			return nil
		},
	}
}

func newProposalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <proposal-id>",
		Short: "Show one proposal as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			engine, err := proposalEngine(h)
			if err != nil {
				return err
			}
			p, err := engine.Load(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
			return nil
		},
	}
}

func newProposalApproveCmd() *cobra.Command {
	var approvedBy string

	cmd := &cobra.Command{
		Use:   "approve <proposal-id>",
		Short: "Approve a pending proposal and apply its parameter changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			engine, err := proposalEngine(h)
			if err != nil {
				return err
			}
			p, err := engine.Approve(args[0], approvedBy)
			if err != nil {
				return err
			}
			cmd.Printf("Proposal approved: %s\n", p.ProposalID)
			cmd.Printf("  Parameters now at %s\n", p.VersionTo)
			return nil
		},
	}

	cmd.Flags().StringVar(&approvedBy, "by", "operator", "Who approved the proposal")
	return cmd
}

func newProposalRejectCmd() *cobra.Command {
	var rejectedBy string
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <proposal-id>",
		Short: "Reject a pending proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openHub()
			if err != nil {
				return err
			}
			engine, err := proposalEngine(h)
			if err != nil {
				return err
			}
			p, err := engine.Reject(args[0], reason, rejectedBy)
			if err != nil {
				return err
			}
			cmd.Printf("Proposal rejected: %s\n", p.ProposalID)
			return nil
		},
	}

	cmd.Flags().StringVar(&rejectedBy, "by", "operator", "Who rejected the proposal")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the proposal was rejected")
	return cmd
}
