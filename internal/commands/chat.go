package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/deploychat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the LLM deployment.

The conversation history is sent along with each prompt when the chat
API is in use. Press ctrl+u / ctrl+d to rate the last answer,
ctrl+c to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	ctx, err := newSessionContext()
	if err != nil {
		return err
	}
	defer ctx.client.Close()

	// Resolve the deployment up front so the TUI can show its label and
	// fail fast on a bad id.
	spin := newSpinner("Connecting to deployment")
	spin.start()
	dep, err := ctx.cfg.Deployment()
	if err != nil {
		spin.stopWithError()
		return fmt.Errorf("could not find deployment with given id: %s", ctx.env.DeploymentID)
	}
	spin.stopWithSuccess("Connected to " + deploymentLabel(dep.Label))

	if verboseFlag {
		if info, err := ctx.client.GetApplicationInfo(); err == nil {
			if name, ok := info["name"].(string); ok && name != "" {
				fmt.Fprintf(os.Stderr, "application: %s\n", name)
			}
		}
	}

	return tui.RunChat(ctx.sess, ctx.disp, ctx.feedback, ctx.cfg, dep.Label)
}

func deploymentLabel(label string) string {
	if label == "" {
		return "LLM Deployment"
	}
	return label
}
