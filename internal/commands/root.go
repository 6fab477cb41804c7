// Package commands provides CLI commands for deploychat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/deploychat/internal/api"
	"github.com/diogo/deploychat/internal/config"
	"github.com/diogo/deploychat/internal/dispatch"
	"github.com/diogo/deploychat/internal/session"
)

var (
	// Global flags
	outputFlag   string
	fileFlag     string
	noChatFlag   bool
	noStreamFlag bool
	verboseFlag  bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "deploychat [prompt]",
	Short: "Chat front-end for LLM deployments",
	Long: `deploychat is a terminal front-end for an LLM deployment: it sends
prompts over the prediction or chat-completions API, renders responses
with citations, and records thumbs up/down feedback as a custom metric.

Connection settings come from the environment: TOKEN, ENDPOINT and
DEPLOYMENT_ID are required; CUSTOM_METRIC_ID, APP_ID, ENABLE_CHAT_API,
ENABLE_CHAT_API_STREAMING and SYSTEM_PROMPT are optional.

Examples:
  deploychat chat                      Start interactive chat
  deploychat "What is our SLA?"        Send a single query
  deploychat -f prompt.md              Read prompt from file
  cat prompt.md | deploychat           Read prompt from stdin
  deploychat "Hello" -o response.md    Save response to file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("deploychat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Check for stdin input
		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data))
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data))
		}

		if len(args) > 0 {
			return runQuery(args[0])
		}

		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noChatFlag, "no-chat", false, "Force the batch prediction API even when the chat API is available")
	rootCmd.PersistentFlags().BoolVar(&noStreamFlag, "no-stream", false, "Disable streaming even when the deployment supports it")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Show protocol and response metadata")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}

// sessionContext bundles everything one conversation needs.
type sessionContext struct {
	env      *config.Env
	client   api.ClientInterface
	sess     *session.Session
	cfg      *session.Config
	disp     *dispatch.Dispatcher
	feedback *dispatch.FeedbackSubmitter
}

// newSessionContext wires the environment, platform client and session
// state for one conversation.
func newSessionContext() (*sessionContext, error) {
	env, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	clientOpts := []api.ClientOption{
		api.WithCustomMetricID(env.CustomMetricID),
		api.WithApplicationID(env.AppID),
	}
	if override := config.PredictionOverrideURL(); override != "" {
		clientOpts = append(clientOpts, api.WithPredictionBaseURL(override))
	}

	client, err := api.NewClient(env.Token, env.Endpoint, env.DeploymentID, clientOpts...)
	if err != nil {
		return nil, err
	}

	chatEnabled := env.ChatAPIEnabled && !noChatFlag
	streaming := env.StreamingEnabled && !noStreamFlag
	sess := session.New(env.SystemPrompt)
	cfg := session.NewConfig(client, client, chatEnabled, streaming)

	return &sessionContext{
		env:      env,
		client:   client,
		sess:     sess,
		cfg:      cfg,
		disp:     dispatch.New(client, cfg, sess),
		feedback: dispatch.NewFeedbackSubmitter(client, cfg, sess),
	}, nil
}
