package cli

import (
	"fmt"

	"github.com/serenespa/admin-console/internal/auth"
	"github.com/spf13/cobra"
)

func newVerifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Sign in and confirm the backend accepts the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(o.cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.signIn(ctx, o.email, o.password); err != nil {
				return err
			}
			outcome := a.verifier.Verify(ctx)
			s := a.state.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s (initialized=%t authenticated=%t)\n", outcome, s.Initialized, s.IsAuthenticated)
			if outcome != auth.Authenticated {
				return fmt.Errorf("session not valid: %s", outcome)
			}
			return nil
		},
	}
}
